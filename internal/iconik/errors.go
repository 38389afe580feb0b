package iconik

import (
	"errors"
	"fmt"
	"net/http"

	"assetgate/internal/services"
)

// APIError reports a non-2xx response from the catalog.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("iconik %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("iconik %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is lets callers match API failures against service markers. Every API error
// is a remote error; 404s are also not-found errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case services.ErrRemote:
		return true
	case services.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case services.ErrTransient:
		return e.Temporary()
	}
	return false
}

// Temporary reports whether the status code indicates a retriable condition.
func (e *APIError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
