package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest lifecycle statuses. INITIATED rows become terminal either
// synchronously (card) or through a later provider callback (mobile money).
const (
	PaymentRequestInitiated = "INITIATED"
	PaymentRequestPending   = "PENDING"
	PaymentRequestSuccess   = "SUCCESS"
	PaymentRequestFailed    = "FAILED"
)

const (
	PaymentMethodMpesa = "MPESA"
	PaymentMethodCard  = "CARD"
)

// PaymentRequest is the ledger entry for one contribution attempt. Rows are
// append-only from the caller's perspective: status moves forward through the
// state machine and the row is never deleted.
type PaymentRequest struct {
	ID string

	RequestID     string
	ChannelID     string
	UserID        string
	PaymentMethod string

	Amount   decimal.Decimal
	Currency string

	RequestPayload  string
	RequestResult   *string
	CallbackResult  *string
	RequestStatus   string

	CreatedAt    time.Time
	CreatedBy    *string
	LastEditedAt time.Time
	LastEditedBy *string
}

// TerminalPaymentStatus reports whether no further transition is allowed.
func TerminalPaymentStatus(status string) bool {
	return status == PaymentRequestSuccess || status == PaymentRequestFailed
}
