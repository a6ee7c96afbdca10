package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout marks an upstream call that ran out of its per-call budget.
// Timeouts are transient: the caller must retry with a new idempotency key.
var ErrTimeout = errors.New("upstream request timed out")

// ResponseError is a non-2xx answer from the gateway. 4xx responses are
// fatal and never retried; 5xx responses are transient.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Body)
}

// IsClientError reports whether the error is a fatal 4xx gateway rejection
func IsClientError(err error) bool {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode >= 400 && respErr.StatusCode < 500
	}
	return false
}

// IsTransient reports whether the failure may succeed on a fresh attempt:
// a 5xx response, a timeout, or a network-level failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode >= 500
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
