package lib

import (
	"cinco/src/config"
	"context"
	"errors"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	sc := stripe.NewClient(config.StripeSecretKey())
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

type StripeGateway struct {
	sc *stripe.Client
}

func NewStripeGateway(sc *stripe.Client) *StripeGateway {
	return &StripeGateway{sc: sc}
}

func (s *StripeGateway) Name() string { return "Stripe" }

func (s *StripeGateway) CreateCheckoutSession(ctx context.Context, input *CheckoutSessionInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		UIMode:        stripe.String("hosted"),
		SuccessURL:    stripe.String(input.SuccessURL),
		CancelURL:     stripe.String(input.CancelURL),
		CustomerEmail: stripe.String(input.BillingEmail),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(input.Currency)),
					UnitAmount: stripe.Int64(input.AmountMinor),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(input.LineItemName),
						Description: stripe.String(input.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: input.Metadata,
	}
	cs, err := s.sc.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, s.wrap(err)
	}
	log.Printf("[Stripe] Created checkout session %s\n", cs.ID)
	return &CheckoutSession{
		ID:            cs.ID,
		CheckoutURL:   cs.URL,
		PaymentStatus: StripePaymentStatus(cs),
	}, nil
}

func (s *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	cs, err := s.sc.V1CheckoutSessions.Retrieve(ctx, id, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		return nil, s.wrap(err)
	}
	return &CheckoutSession{
		ID:            cs.ID,
		CheckoutURL:   cs.URL,
		PaymentStatus: StripePaymentStatus(cs),
	}, nil
}

func (s *StripeGateway) ExpireCheckoutSession(ctx context.Context, id string) error {
	_, err := s.sc.V1CheckoutSessions.Expire(ctx, id, &stripe.CheckoutSessionExpireParams{})
	if err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *StripeGateway) wrap(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return &GatewayError{Provider: s.Name(), StatusCode: serr.HTTPStatusCode, Detail: serr.Msg}
	}
	return &GatewayError{Provider: s.Name(), Detail: err.Error()}
}

// StripePaymentStatus folds a Checkout Session into the paid/pending/expired
// vocabulary used for verification.
func StripePaymentStatus(cs *stripe.CheckoutSession) string {
	switch cs.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return "paid"
	}
	if cs.Status == stripe.CheckoutSessionStatusExpired {
		return "expired"
	}
	return "pending"
}
