package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Robaed/changachanga-dev/app/entity"
)

type MpesaPaymentDetails struct {
	AccountNumber string `json:"account_number"`
}

type CardPaymentDetails struct {
	CardNumber   string `json:"card_number"`
	CardExpMonth string `json:"card_exp_month"`
	CardExpYear  string `json:"card_exp_year"`
	CardCVV      string `json:"card_cvv"`
}

// ContributionRequest is the inbound payload for contributing to a channel.
// Exactly one of MpesaDetails/CardDetails must be present and it must match
// the declared payment method; this is checked before any network call.
type ContributionRequest struct {
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	PaymentMethod string               `json:"payment_method"`
	MpesaDetails  *MpesaPaymentDetails `json:"mpesa_details,omitempty"`
	CardDetails   *CardPaymentDetails  `json:"card_details,omitempty"`
}

func NewContributionRequestFromContext(ctx echo.Context) (*ContributionRequest, error) {
	var body ContributionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.PaymentMethod = strings.ToUpper(strings.TrimSpace(body.PaymentMethod))
	return &body, nil
}

func (r *ContributionRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return errors.New("amount must be > 0")
	}
	if r.Currency != "KES" {
		return errors.New("currency must be KES")
	}

	switch r.PaymentMethod {
	case entity.PaymentMethodMpesa:
		if r.MpesaDetails == nil {
			return errors.New("mpesa_details is required for MPESA payments")
		}
		if r.CardDetails != nil {
			return errors.New("card_details must not be set for MPESA payments")
		}
		if strings.TrimSpace(r.MpesaDetails.AccountNumber) == "" {
			return errors.New("mpesa_details.account_number is required")
		}
	case entity.PaymentMethodCard:
		if r.CardDetails == nil {
			return errors.New("card_details is required for CARD payments")
		}
		if r.MpesaDetails != nil {
			return errors.New("mpesa_details must not be set for CARD payments")
		}
		if strings.TrimSpace(r.CardDetails.CardNumber) == "" {
			return errors.New("card_details.card_number is required")
		}
		if strings.TrimSpace(r.CardDetails.CardExpMonth) == "" || strings.TrimSpace(r.CardDetails.CardExpYear) == "" {
			return errors.New("card expiry is required")
		}
	default:
		return errors.New("payment_method must be MPESA or CARD")
	}

	return nil
}

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Title       string `json:"title"`
	AccountNo   string `json:"account_no"`
}

func NewCreateChannelRequestFromContext(ctx echo.Context) (*CreateChannelRequest, error) {
	var body CreateChannelRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	body.Title = strings.TrimSpace(body.Title)
	body.AccountNo = strings.TrimSpace(body.AccountNo)
	return &body, nil
}

func (r *CreateChannelRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Description == "" {
		return errors.New("description is required")
	}
	if r.AccountNo == "" {
		return errors.New("account_no is required")
	}
	return nil
}

type InviteParticipantsRequest struct {
	PhoneNumbers []string `json:"phone_numbers"`
}

func NewInviteParticipantsRequestFromContext(ctx echo.Context) (*InviteParticipantsRequest, error) {
	var body InviteParticipantsRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	cleaned := make([]string, 0, len(body.PhoneNumbers))
	for _, number := range body.PhoneNumbers {
		number = strings.TrimSpace(number)
		if number != "" {
			cleaned = append(cleaned, number)
		}
	}
	body.PhoneNumbers = cleaned
	return &body, nil
}

func (r *InviteParticipantsRequest) Validate() error {
	if len(r.PhoneNumbers) == 0 {
		return errors.New("phone_numbers is required")
	}
	return nil
}
