package genapi

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"strings"
)

// APIError is a non-2xx response or failed task from the image API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

// Error formats the failure for logs and event messages.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Operation + ": " + e.Message
	}
	return e.Operation + ": " + nethttp.StatusText(e.StatusCode) + ": " + e.Message
}

// newAPIError builds an APIError from a response, reading a JSON error
// body when present.
func newAPIError(operation string, res *nethttp.Response) *APIError {
	apiErr := &APIError{Operation: operation, StatusCode: res.StatusCode}

	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err == nil && len(body) > 0 {
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			if envelope.Error != "" {
				apiErr.Message = envelope.Error
			} else if envelope.Message != "" {
				apiErr.Message = envelope.Message
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = "request failed"
	}
	return apiErr
}

// IsAuthError reports whether an error indicates a missing or rejected key.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == nethttp.StatusUnauthorized || apiErr.StatusCode == nethttp.StatusForbidden {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{"unauthorized", "invalid api key", "forbidden"} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
