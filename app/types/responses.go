package types

import "encoding/json"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type PaymentRequestResponse struct {
	RequestID     string          `json:"request_id"`
	ChannelID     string          `json:"channel_id"`
	PaymentMethod string          `json:"payment_method"`
	Amount        string          `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	ProviderData  json.RawMessage `json:"provider_data,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type PaymentRequestEnvelopeResponse struct {
	PaymentRequest *PaymentRequestResponse `json:"payment_request"`
}

type ChannelResponse struct {
	ChannelNo      string `json:"channel_no"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	RunningBalance string `json:"running_balance"`
	CreatedAt      string `json:"created_at"`
}

type ChannelEnvelopeResponse struct {
	Channel *ChannelResponse `json:"channel"`
}

type ChannelInviteResponse struct {
	InviteCode   string `json:"invite_code"`
	PhoneNumber  string `json:"phone_number"`
	InviteStatus string `json:"invite_status"`
}

type ListChannelInvitesResponse struct {
	Invites []*ChannelInviteResponse `json:"invites"`
}
