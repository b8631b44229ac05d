package wallet

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies every failure the gateway can return. Callers switch
// on the kind instead of inspecting upstream errors.
type ErrorKind string

const (
	// KindCustomerNotFound — the internal customer id does not exist.
	KindCustomerNotFound ErrorKind = "customer_not_found"
	// KindNoSubaccount — the customer exists but has no pool subaccount mapping.
	KindNoSubaccount ErrorKind = "no_subaccount_configured"
	// KindRateLimited — upstream returned 429 and no cached fallback existed.
	KindRateLimited ErrorKind = "upstream_rate_limited"
	// KindForbidden — upstream returned 403; pool credentials or permissions
	// are misconfigured and operator intervention is required.
	KindForbidden ErrorKind = "upstream_forbidden"
	// KindUnavailable — upstream returned 5xx or the request failed at the
	// transport level.
	KindUnavailable ErrorKind = "upstream_unavailable"
	// KindUpstream — any other upstream failure.
	KindUpstream ErrorKind = "upstream_error"
)

// Error is the only error type GetSettings returns. Message is always safe
// to forward to callers; raw upstream errors never cross this boundary.
type Error struct {
	Kind       ErrorKind
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("wallet settings: %s: %s", e.Kind, e.Message)
}

// KindOf extracts the error kind, or "" for non-gateway errors.
func KindOf(err error) ErrorKind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// IsRetryable reports whether the caller may retry after a cooldown.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindUnavailable:
		return true
	default:
		return false
	}
}
