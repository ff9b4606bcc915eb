package common

import (
	"cinco/src/lib"
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeGateway struct {
	mu        sync.Mutex
	created   []*lib.CheckoutSessionInput
	expired   []string
	statuses  map[string]string
	createErr error
	fetchErr  error
	fetches   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: map[string]string{}}
}

func (f *fakeGateway) Name() string { return "Fake" }

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, input *lib.CheckoutSessionInput) (*lib.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, input)
	id := fmt.Sprintf("cs_%d", len(f.created))
	return &lib.CheckoutSession{ID: id, CheckoutURL: "https://checkout.test/" + id}, nil
}

func (f *fakeGateway) GetCheckoutSession(ctx context.Context, id string) (*lib.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	status, ok := f.statuses[id]
	if !ok {
		status = "pending"
	}
	return &lib.CheckoutSession{ID: id, PaymentStatus: status}, nil
}

func (f *fakeGateway) ExpireCheckoutSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, id)
	return nil
}

func (f *fakeGateway) setStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
}

type fakeSMS struct {
	mu     sync.Mutex
	sent   map[string]string
	failOn map[string]bool
}

func newFakeSMS() *fakeSMS {
	return &fakeSMS{sent: map[string]string{}, failOn: map[string]bool{}}
}

func (f *fakeSMS) Name() string { return "FakeSMS" }

func (f *fakeSMS) SendSMS(ctx context.Context, to, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[to] {
		return errors.New("carrier rejected")
	}
	f.sent[to] = message
	return nil
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeEmail) Name() string { return "FakeEmail" }

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}
