package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InviteStatusPending  = "PENDING"
	InviteStatusSent     = "SENT"
	InviteStatusAccepted = "ACCEPTED"
	InviteStatusRejected = "REJECTED"
)

type Channel struct {
	ID string

	ChannelNo   string
	Code        string
	AccountNo   string
	Name        string
	Title       string
	Description string
	Link        *string
	ImageURL    *string
	VideoURL    *string

	RunningBalance decimal.Decimal

	CreatedAt    time.Time
	CreatedBy    *string
	LastEditedAt time.Time
}

// ChannelInvite tracks an invite sent to a phone number for a channel.
type ChannelInvite struct {
	ID string

	ChannelID    string
	PhoneNumber  string
	InviteCode   string
	InviteStatus string

	CreatedAt    time.Time
	CreatedBy    *string
	LastEditedAt time.Time
}
