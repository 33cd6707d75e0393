package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAddress is returned when a request carries no wallet address
	ErrMissingAddress = errors.New("missing wallet address")

	// ErrInvalidAddress is returned for addresses that are not 20-byte hex strings
	ErrInvalidAddress = errors.New("invalid wallet address format")

	// ErrInvalidChain is returned when the chain id is not a positive integer
	ErrInvalidChain = errors.New("invalid chain id")

	// ErrUnsupportedChain is returned when the token data API does not serve the chain
	ErrUnsupportedChain = errors.New("chain not supported for token balances")
)

// UpstreamError reports a failed call to a third-party API: transport failure,
// non-2xx status, malformed JSON or an unexpected response shape.
type UpstreamError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream error (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s upstream error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError builds an UpstreamError from a formatted message
func NewUpstreamError(provider string, statusCode int, format string, args ...interface{}) *UpstreamError {
	return &UpstreamError{
		Provider:   provider,
		StatusCode: statusCode,
		Err:        fmt.Errorf(format, args...),
	}
}

// ConversionError reports a token balance that could not be converted.
// Only the affected entry is dropped.
type ConversionError struct {
	ContractAddress string
	Value           string
	Err             error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert balance %q of %s: %v", e.Value, e.ContractAddress, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err was caused by bad request input
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingAddress) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidChain) ||
		errors.Is(err, ErrUnsupportedChain)
}
