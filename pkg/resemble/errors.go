package resemble

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/resemble-ai/resemble-go/internal/resilience"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// ErrCircuitOpen is returned while the client's circuit breaker rejects
// requests after repeated server failures.
var ErrCircuitOpen = resilience.ErrCircuitOpen

// APIError is returned for non-2xx responses and for 2xx responses whose
// envelope reports success=false.
type APIError struct {
	StatusCode int
	Message    string

	// Populated by the synthesis server when it rejects a request.
	ErrorName string
	Issues    []string

	RequestID  string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("resemble API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("resemble API returned status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether repeating the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is an APIError with status 401 or 403.
func IsUnauthorized(err error) bool {
	code := statusOf(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type errorBody struct {
	Message   string   `json:"message"`
	Error     string   `json:"error"`
	ErrorName string   `json:"error_name"`
	Issues    []string `json:"issues"`
}

// newAPIError builds an APIError from a failed response and closes its body.
// The message comes from a JSON body when there is one.
func newAPIError(resp *http.Response, requestID string) *APIError {
	defer resp.Body.Close()

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var body errorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil {
			apiErr.Message = body.Message
			if apiErr.Message == "" {
				apiErr.Message = body.Error
			}
			apiErr.ErrorName = body.ErrorName
			apiErr.Issues = body.Issues
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
