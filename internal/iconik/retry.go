package iconik

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// transientMessages match transport failures that arrive as plain strings,
// typically wrapped by net/http.
var transientMessages = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"awaiting headers",
	"unexpected eof",
}

// SleepWithContext waits for d or until ctx is done, whichever comes first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRetriable reports whether a request failure is transient: 429 and
// 502-504 responses, deadlines, and connection resets or timeouts.
// Cancellation is never retried.
func IsRetriable(err error) bool {
	var (
		apiErr *APIError
		netErr net.Error
	)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.As(err, &apiErr):
		return apiErr.Temporary()
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED):
		return true
	case errors.As(err, &netErr) && netErr.Timeout():
		return true
	}
	return hasTransientMessage(err)
}

// retryAllowed reports whether a failed request may be sent again. GET, PUT
// and PATCH are idempotent. Any other method is retried only after a 429 or
// a failed dial, where the request never reached the handler.
func retryAllowed(method string, err error) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch:
		return IsRetriable(err)
	}
	return notDelivered(err)
}

func notDelivered(err error) bool {
	var opErr *net.OpError
	switch {
	case StatusCode(err) == http.StatusTooManyRequests:
		return true
	case errors.Is(err, syscall.ECONNREFUSED):
		return true
	case errors.As(err, &opErr):
		return opErr.Op == "dial"
	}
	return false
}

func hasTransientMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, token := range transientMessages {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}
