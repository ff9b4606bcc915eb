package lib

import (
	"bytes"
	"cinco/src/config"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

var paymongoPaymentMethods = []string{"card", "gcash", "paymaya", "grab_pay"}

type PaymongoGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewPaymongoGateway(baseURL, secretKey string, client *http.Client) *PaymongoGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &PaymongoGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    client,
	}
}

func (p *PaymongoGateway) Name() string { return "PayMongo" }

type paymongoLineItem struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

type paymongoBilling struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type paymongoCheckoutAttributes struct {
	Billing             paymongoBilling    `json:"billing"`
	SendEmailReceipt    bool               `json:"send_email_receipt"`
	ShowDescription     bool               `json:"show_description"`
	ShowLineItems       bool               `json:"show_line_items"`
	CancelURL           string             `json:"cancel_url"`
	SuccessURL          string             `json:"success_url"`
	LineItems           []paymongoLineItem `json:"line_items"`
	PaymentMethodTypes  []string           `json:"payment_method_types"`
	Description         string             `json:"description"`
	StatementDescriptor string             `json:"statement_descriptor,omitempty"`
	Metadata            map[string]string  `json:"metadata,omitempty"`
}

func (p *PaymongoGateway) CreateCheckoutSession(ctx context.Context, input *CheckoutSessionInput) (*CheckoutSession, error) {
	payload := map[string]any{
		"data": map[string]any{
			"attributes": paymongoCheckoutAttributes{
				Billing: paymongoBilling{
					Name:  input.BillingName,
					Email: input.BillingEmail,
				},
				SendEmailReceipt: true,
				ShowDescription:  true,
				ShowLineItems:    true,
				CancelURL:        input.CancelURL,
				SuccessURL:       input.SuccessURL,
				LineItems: []paymongoLineItem{
					{
						Name:     input.LineItemName,
						Amount:   input.AmountMinor,
						Currency: input.Currency,
						Quantity: 1,
					},
				},
				PaymentMethodTypes:  paymongoPaymentMethods,
				Description:         input.Description,
				StatementDescriptor: config.StatementDescriptor(),
				Metadata:            input.Metadata,
			},
		},
	}
	body, err := p.do(ctx, http.MethodPost, "/checkout_sessions", payload)
	if err != nil {
		return nil, err
	}
	session := &CheckoutSession{
		ID:          gjson.GetBytes(body, "data.id").String(),
		CheckoutURL: gjson.GetBytes(body, "data.attributes.checkout_url").String(),
	}
	if session.ID == "" || session.CheckoutURL == "" {
		return nil, &GatewayError{Provider: p.Name(), StatusCode: http.StatusOK, Detail: "checkout session response is missing id or checkout_url"}
	}
	log.Printf("[PayMongo] Created checkout session %s\n", session.ID)
	return session, nil
}

func (p *PaymongoGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	path := fmt.Sprintf("/checkout_sessions/%s?include=payment_intent", url.PathEscape(id))
	body, err := p.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	attrs := gjson.GetBytes(body, "data.attributes")
	status := attrs.Get("payment_intent.attributes.status").String()
	if status == "" {
		status = attrs.Get("payments.0.attributes.status").String()
	}
	if status == "" {
		status = "pending"
	}
	return &CheckoutSession{
		ID:            gjson.GetBytes(body, "data.id").String(),
		CheckoutURL:   attrs.Get("checkout_url").String(),
		PaymentStatus: status,
	}, nil
}

func (p *PaymongoGateway) ExpireCheckoutSession(ctx context.Context, id string) error {
	path := fmt.Sprintf("/checkout_sessions/%s/expire", url.PathEscape(id))
	_, err := p.do(ctx, http.MethodPost, path, nil)
	return err
}

func (p *PaymongoGateway) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &GatewayError{Provider: p.Name(), Detail: err.Error()}
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return nil, &GatewayError{Provider: p.Name(), Detail: err.Error()}
	}
	req.SetBasicAuth(p.secretKey, "")
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := p.client.Do(req)
	if err != nil {
		return nil, &GatewayError{Provider: p.Name(), Detail: err.Error()}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &GatewayError{Provider: p.Name(), StatusCode: res.StatusCode, Detail: err.Error()}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := gjson.GetBytes(body, "errors.0.detail").String()
		if detail == "" {
			detail = "Unknown API error occurred."
		}
		return nil, &GatewayError{Provider: p.Name(), StatusCode: res.StatusCode, Detail: detail}
	}
	return body, nil
}
