package binance

import (
	"encoding/json"
	"fmt"
)

// APIError represents a Binance API error response with additional context.
type APIError struct {
	Code       int    `json:"code"`
	Message    string `json:"msg"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Binance API error %d (HTTP %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// Common Binance spot error codes.
const (
	ErrCodeTooManyRequests     = -1003
	ErrCodeInvalidTimestamp    = -1021
	ErrCodeInvalidSignature    = -1022
	ErrCodeInvalidQuantity     = -1013
	ErrCodeInsufficientBalance = -2010
	ErrCodeOrderNotFound       = -2011
	ErrCodeInvalidAPIKey       = -2014
)

// IsAuthenticationError checks if the error is related to authentication.
func IsAuthenticationError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		switch apiErr.Code {
		case ErrCodeInvalidAPIKey, ErrCodeInvalidSignature, ErrCodeInvalidTimestamp:
			return true
		}
	}
	return false
}

// IsInsufficientBalanceError checks if the error is due to insufficient balance.
func IsInsufficientBalanceError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Code == ErrCodeInsufficientBalance
	}
	return false
}

// IsRateLimitError checks if the error is due to rate limiting.
func IsRateLimitError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Code == ErrCodeTooManyRequests
	}
	return false
}

// parseAPIError extracts an APIError from a non-2xx response body. Bodies
// that are not the usual {"code":...,"msg":...} shape still yield a usable
// error carrying the raw payload.
func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{HTTPStatus: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == 0 {
		apiErr.Message = string(body)
	}
	return apiErr
}
