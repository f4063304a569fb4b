package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// APIError is a non-2xx answer from Jira.
type APIError struct {
	Status  int
	Service string
	// Details holds the messages Jira put in errorMessages and errors.
	Details []string
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Service: serviceName, Details: parseErrorBody(body)}
}

func (e *APIError) Error() string {
	var msg string
	switch e.Status {
	case http.StatusBadRequest:
		msg = "bad request (HTTP 400)"
	case http.StatusUnauthorized:
		msg = "authentication failed (HTTP 401)"
	case http.StatusForbidden:
		msg = "access denied (HTTP 403)"
	case http.StatusNotFound:
		msg = "not found or no permission (HTTP 404)"
	case http.StatusTooManyRequests:
		msg = "rate limited (HTTP 429)"
	default:
		msg = fmt.Sprintf("%s API error (HTTP %d)", e.Service, e.Status)
	}
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return msg
}

func parseErrorBody(body []byte) []string {
	var payload struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}

	details := append([]string(nil), payload.ErrorMessages...)
	fields := make([]string, 0, len(payload.Errors))
	for field := range payload.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		details = append(details, field+": "+payload.Errors[field])
	}
	return details
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func IsNotFound(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

func IsRateLimited(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Status == http.StatusTooManyRequests
}

// IsRetryable reports whether err is a connection failure, a 429 or a 5xx.
func IsRetryable(err error) bool {
	var conn connError
	if errors.As(err, &conn) {
		return true
	}
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500)
}
