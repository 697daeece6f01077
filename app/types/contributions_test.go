package types

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Robaed/changachanga-dev/app/entity"
)

func validMpesaRequest() *ContributionRequest {
	return &ContributionRequest{
		Amount:        decimal.NewFromInt(500),
		Currency:      "KES",
		PaymentMethod: entity.PaymentMethodMpesa,
		MpesaDetails:  &MpesaPaymentDetails{AccountNumber: "254700000001"},
	}
}

func validCardRequest() *ContributionRequest {
	return &ContributionRequest{
		Amount:        decimal.NewFromInt(500),
		Currency:      "KES",
		PaymentMethod: entity.PaymentMethodCard,
		CardDetails: &CardPaymentDetails{
			CardNumber:   "4111111111111111",
			CardExpMonth: "09",
			CardExpYear:  "2027",
		},
	}
}

func TestContributionRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(r *ContributionRequest)
		base    func() *ContributionRequest
		wantErr bool
	}{
		{"valid mpesa", func(_ *ContributionRequest) {}, validMpesaRequest, false},
		{"valid card", func(_ *ContributionRequest) {}, validCardRequest, false},
		{"zero amount", func(r *ContributionRequest) { r.Amount = decimal.Zero }, validMpesaRequest, true},
		{"negative amount", func(r *ContributionRequest) { r.Amount = decimal.NewFromInt(-5) }, validMpesaRequest, true},
		{"wrong currency", func(r *ContributionRequest) { r.Currency = "USD" }, validMpesaRequest, true},
		{"unknown method", func(r *ContributionRequest) { r.PaymentMethod = "CRYPTO" }, validMpesaRequest, true},
		{"mpesa missing details", func(r *ContributionRequest) { r.MpesaDetails = nil }, validMpesaRequest, true},
		{"mpesa with card details", func(r *ContributionRequest) {
			r.CardDetails = validCardRequest().CardDetails
		}, validMpesaRequest, true},
		{"mpesa empty account", func(r *ContributionRequest) {
			r.MpesaDetails.AccountNumber = "  "
		}, validMpesaRequest, true},
		{"card missing details", func(r *ContributionRequest) { r.CardDetails = nil }, validCardRequest, true},
		{"card with mpesa details", func(r *ContributionRequest) {
			r.MpesaDetails = &MpesaPaymentDetails{AccountNumber: "254700000001"}
		}, validCardRequest, true},
		{"card missing number", func(r *ContributionRequest) { r.CardDetails.CardNumber = "" }, validCardRequest, true},
		{"card missing expiry", func(r *ContributionRequest) { r.CardDetails.CardExpYear = "" }, validCardRequest, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.base()
			tc.mutate(req)
			err := req.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestNewContributionRequestFromContextNormalizes(t *testing.T) {
	e := echo.New()
	body := `{"amount":"250","currency":" kes ","payment_method":"mpesa","mpesa_details":{"account_number":"254700000001"}}`
	httpReq := httptest.NewRequest("POST", "/channels/CH123456/contributions", strings.NewReader(body))
	httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(httpReq, rec)

	req, err := NewContributionRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.Currency != "KES" {
		t.Fatalf("expected normalized currency, got %q", req.Currency)
	}
	if req.PaymentMethod != entity.PaymentMethodMpesa {
		t.Fatalf("expected normalized payment method, got %q", req.PaymentMethod)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected normalized request to validate, got %v", err)
	}
}

func TestCreateChannelRequestValidate(t *testing.T) {
	req := &CreateChannelRequest{Name: "School Fund", Description: "Fees drive", Title: "Fees", AccountNo: "AC100200"}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	missingName := *req
	missingName.Name = ""
	if err := missingName.Validate(); err == nil {
		t.Fatal("expected error for missing name")
	}

	missingAccount := *req
	missingAccount.AccountNo = ""
	if err := missingAccount.Validate(); err == nil {
		t.Fatal("expected error for missing account_no")
	}
}

func TestInviteParticipantsRequestValidate(t *testing.T) {
	req := &InviteParticipantsRequest{PhoneNumbers: []string{"254700000001"}}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	empty := &InviteParticipantsRequest{}
	if err := empty.Validate(); err == nil {
		t.Fatal("expected error for empty phone_numbers")
	}
}
