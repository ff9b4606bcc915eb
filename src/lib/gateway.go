package lib

import (
	"cinco/src/config"
	"context"
	"fmt"
	"log"
)

type CheckoutSessionInput struct {
	AmountMinor  int64
	Currency     string
	LineItemName string
	Description  string
	BillingName  string
	BillingEmail string
	SuccessURL   string
	CancelURL    string
	Metadata     map[string]string
}

type CheckoutSession struct {
	ID            string
	CheckoutURL   string
	PaymentStatus string
}

// PaymentGateway is a hosted-checkout provider. Implementations never retry.
type PaymentGateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, input *CheckoutSessionInput) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	ExpireCheckoutSession(ctx context.Context, id string) error
}

// GatewayError is returned for every failed call to a payment provider.
type GatewayError struct {
	Provider   string
	StatusCode int
	Detail     string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s API Error: %s", e.Provider, e.Detail)
}

var paymentGateway PaymentGateway

func GetPaymentGateway() PaymentGateway {
	if paymentGateway != nil {
		return paymentGateway
	}
	g, err := CreatePaymentGateway(config.PaymentProvider())
	if err != nil {
		log.Printf("Could not initialize payment gateway: %s\n", err.Error())
		return nil
	}
	paymentGateway = g
	return g
}

// NewPaymentGateway Replace payment gateway instance with custom implementation
func NewPaymentGateway(g PaymentGateway) {
	paymentGateway = g
}

func CreatePaymentGateway(provider string) (PaymentGateway, error) {
	switch provider {
	case "paymongo":
		return NewPaymongoGateway(config.PaymongoAPIURL(), config.PaymongoSecretKey(), nil), nil
	case "stripe":
		return NewStripeGateway(GetStripeClient()), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", provider)
	}
}
