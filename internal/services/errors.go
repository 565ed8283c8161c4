package services

import "errors"

// Error taxonomy surfaced to handlers. Services wrap these sentinels with
// context; handlers map them to HTTP statuses with errors.Is.
var (
	// ErrValidation covers rejected input: empty line sets, negative prices.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers missing plugins, carts, orders and users.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate cart lines and duplicate in-flight checkouts.
	ErrConflict = errors.New("conflict")
	// ErrPaymentGateway covers charge-creation failures; nothing is persisted
	// when it is returned.
	ErrPaymentGateway = errors.New("payment gateway error")
	// ErrBadSignature is a failed webhook signature check. The event payload
	// is never parsed when this is returned.
	ErrBadSignature = errors.New("invalid webhook signature")
)
