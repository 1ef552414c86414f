// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
	"strconv"
)

// Sentinel errors mapped onto HTTP statuses.
var (
	ErrValidation  = errors.New("validation failed")
	ErrRateLimited = errors.New("too many requests")
	ErrUnavailable = errors.New("service unavailable")
)

// RetryAfter is advertised on rate-limited and unavailable responses.
const RetryAfter = 30

// RespondError maps errors to RFC7807 responses. Unmapped errors become a
// 500 without detail so internal messages never reach the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrRateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfter))
		Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export limit reached, try again shortly")
	case errors.Is(err, ErrUnavailable):
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfter))
		Problem(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
