package provider

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPending Status = "PENDING"
	StatusFailed  Status = "FAILED"
)

type CardDetails struct {
	Number   string
	ExpMonth string
	ExpYear  string
}

// PaymentInput is the normalized per-rail request. PhoneNumber and Card are
// mutually exclusive; the router validates that before dispatching.
type PaymentInput struct {
	RequestID   string
	Amount      decimal.Decimal
	Currency    string
	PhoneNumber string
	Card        *CardDetails
}

// Result is the normalized provider response. ProviderData carries the raw
// provider payload for the ledger; it is never interpreted by callers.
type Result struct {
	Status       Status
	ProviderData json.RawMessage
}

// Client is one payment rail. MakePayment surfaces a *Error after the
// client's retry policy is exhausted; StatusPending results are confirmed
// later through the provider callback.
type Client interface {
	Method() string
	MakePayment(ctx context.Context, input *PaymentInput) (*Result, error)
}
