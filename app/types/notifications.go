package types

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	stkResultSuccess = "0"
	stkResultFailed  = "1"
)

// ProviderNotification is the asynchronous provider callback for a push
// payment, correlated to a ledger row by the invoice number embedded in the
// original outbound call. The raw payload is retained verbatim for audit.
type ProviderNotification struct {
	RequestID  string
	StatusCode string
	Succeeded  bool
	StatusText string
	Payload    string
}

func NewProviderNotificationFromContext(ctx echo.Context) (*ProviderNotification, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	var body struct {
		InvoiceNumber string `json:"invoiceNumber"`
		Response      struct {
			InvoiceNumber string `json:"invoiceNumber"`
		} `json:"response"`
		Header struct {
			StatusCode        string `json:"statusCode"`
			StatusDescription string `json:"statusDescription"`
		} `json:"header"`
	}
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, err
	}

	requestID := strings.TrimSpace(body.InvoiceNumber)
	if requestID == "" {
		requestID = strings.TrimSpace(body.Response.InvoiceNumber)
	}

	statusCode := strings.TrimSpace(body.Header.StatusCode)

	return &ProviderNotification{
		RequestID:  requestID,
		StatusCode: statusCode,
		Succeeded:  statusCode == stkResultSuccess,
		StatusText: strings.TrimSpace(body.Header.StatusDescription),
		Payload:    string(rawBody),
	}, nil
}

// Validate rejects payloads that cannot settle a ledger row. A callback
// without a status header is indistinguishable from a truncated delivery,
// so it is refused rather than treated as a failed payment.
func (n *ProviderNotification) Validate() error {
	if n.RequestID == "" {
		return errors.New("notification is missing an invoice number")
	}
	if n.StatusCode == "" {
		return errors.New("notification is missing a status code")
	}
	return nil
}
