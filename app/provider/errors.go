package provider

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure for retry decisions and user feedback.
type Kind int

const (
	// KindTransient covers timeouts and connection failures: no reply was
	// received, so the call is safe to retry.
	KindTransient Kind = iota + 1
	// KindRejected covers 4xx-class replies: the provider refused the
	// request; retrying cannot help.
	KindRejected
	// KindFault covers 5xx-class replies: a provider-side fault, retryable.
	KindFault
)

// Error is the single exception kind a provider client surfaces, so the
// router and callers need not know provider internals.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable is the retry predicate shared by provider clients: transient
// and provider-fault errors are retried, rejections are fatal. Unclassified
// errors are not retried.
func IsRetryable(err error) bool {
	var provErr *Error
	if !errors.As(err, &provErr) {
		return false
	}
	return provErr.Kind != KindRejected
}

// IsRejected reports whether the provider refused the request outright, so
// callers can distinguish "invalid request" from "try again".
func IsRejected(err error) bool {
	var provErr *Error
	return errors.As(err, &provErr) && provErr.Kind == KindRejected
}
