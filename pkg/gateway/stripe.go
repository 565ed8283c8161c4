package gateway

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements PaymentGateway on top of Stripe PaymentIntents.
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway configures the Stripe SDK with the account secret key and
// returns a gateway that verifies webhooks with the given endpoint secret.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

// CreateCharge creates a PaymentIntent for the amount in minor units.
func (g *StripeGateway) CreateCharge(amountCents int64, currency, idempotencyKey string) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent creation failed: %w", err)
	}
	return &Charge{
		Ref:          intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// VerifyEvent validates the Stripe-Signature header before touching the
// payload, then extracts the charge reference for payment events.
func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe webhook signature verification failed: %w", err)
	}

	out := &Event{Type: string(event.Type)}
	if out.Type == ChargeSucceeded {
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("failed to parse payment intent from event: %w", err)
		}
		out.ChargeRef = intent.ID
	}
	return out, nil
}
