package service

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrChannelNotFound        = errors.New("channel not found")
	ErrPaymentRequestNotFound = errors.New("payment request not found")
	// ErrPaymentRejected covers provider 4xx-class refusals: the request was
	// wrong and retrying cannot help.
	ErrPaymentRejected = errors.New("payment rejected by provider")
	// ErrPaymentFailed covers transient and provider-side faults after the
	// retry policy is exhausted.
	ErrPaymentFailed = errors.New("payment failed")
)
