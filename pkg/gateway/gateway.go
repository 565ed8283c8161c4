// Package gateway wraps the external payment provider. The workflow engine
// only sees the PaymentGateway interface, so tests can stand in a fake and
// the provider can be swapped without touching order logic.
package gateway

// ChargeSucceeded is the only event type the reconciliation workflow acts on.
// Every other type is acknowledged and dropped.
const ChargeSucceeded = "payment_intent.succeeded"

// Charge is an authorized-but-unconfirmed payment. Ref is the provider's
// opaque reference stored on the order; ClientSecret is handed to the client
// to complete the charge browser-side.
type Charge struct {
	Ref          string
	ClientSecret string
}

// Event is a verified webhook notification. ChargeRef is only populated for
// payment events.
type Event struct {
	Type      string
	ChargeRef string
}

// PaymentGateway is the provider contract consumed by the order workflow.
type PaymentGateway interface {
	// CreateCharge reserves a charge for the given minor-unit amount. The
	// idempotency key must be fresh per checkout attempt so a client retry
	// after a timeout cannot double-charge.
	CreateCharge(amountCents int64, currency, idempotencyKey string) (*Charge, error)
	// VerifyEvent checks the webhook signature against the shared secret and
	// parses the payload. Verification happens before any parsing; an
	// invalid signature returns an error and the payload is never inspected.
	VerifyEvent(payload []byte, sigHeader string) (*Event, error)
}
