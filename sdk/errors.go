package judgerun

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when the server responds with a non-success status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("judgerun: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is the judge's rate limit surfaced by the
// server.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
