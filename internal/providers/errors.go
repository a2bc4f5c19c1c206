package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"koomy/portal/internal/constants"
	"koomy/portal/internal/models/dtos"
)

// ProviderError represents a failed call to the Koomy API
type ProviderError struct {
	Code    string
	Message string
	Details string
	Status  int
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status the portal should answer with for this error
func (e *ProviderError) HTTPStatus() int {
	switch {
	case e.Status >= 400 && e.Status < 600:
		return e.Status
	case e.Code == constants.ErrCodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// AsProviderError unwraps err into a *ProviderError
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsUnauthorized reports whether the API rejected the bearer token
func IsUnauthorized(err error) bool {
	pe, ok := AsProviderError(err)
	return ok && pe.Status == http.StatusUnauthorized
}

// upstreamMessage extracts {error} from a response body, or "" when absent
func upstreamMessage(body []byte) string {
	var payload dtos.UpstreamError
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

// buildHTTPError creates appropriate error based on status code. The server
// message is kept when the body carries one.
func buildHTTPError(statusCode int, endpoint string, body []byte) error {
	code := constants.ErrCodeUpstreamError
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = constants.ErrCodeUnauthorized
	case http.StatusNotFound:
		code = constants.ErrCodeNotFound
	case http.StatusTooManyRequests:
		code = constants.ErrCodeRateLimited
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = constants.ErrCodeValidation
	}

	msg := upstreamMessage(body)
	if msg == "" {
		msg = constants.GetErrorMessage(constants.ErrCodeUpstreamError)
	}
	return &ProviderError{
		Code:    code,
		Message: msg,
		Details: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
		Status:  statusCode,
	}
}
