package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned for a local edit that references an unknown id.
	ErrNotFound = errors.New("subscription not found")
	// ErrNetwork matches any *NetworkError.
	ErrNetwork = errors.New("network failure")
	// ErrTokenNotFound means the token is unknown to the remote side.
	ErrTokenNotFound = errors.New("token not found")
)

// ValidationError describes a malformed field on a record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NetworkError wraps a failed call across the remote boundary.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNetwork) match.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Validate checks the record invariants and reports the first violation.
func Validate(r Record) error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "Name cannot be empty"}
	}
	if !r.Price.GreaterThan(decimal.Zero) {
		return &ValidationError{Field: "price", Message: "Price must be greater than 0"}
	}
	if !r.Currency.Valid() {
		return &ValidationError{Field: "currency", Message: "Unsupported currency"}
	}
	if !r.Period.Valid() {
		return &ValidationError{Field: "period", Message: "Unsupported billing period"}
	}
	if r.FirstBillDate.IsZero() {
		return &ValidationError{Field: "firstBillDate", Message: "Invalid first bill date"}
	}
	return nil
}
