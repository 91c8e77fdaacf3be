package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/alexivanou/checkout-address/internal/checkout"
)

var (
	// ErrSessionNotFound is returned for a cart without an open address step
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrInvalidCartID is returned for an empty cart id
	ErrInvalidCartID = errors.New("invalid cart id")
	// ErrSubmitFailed wraps a cart update the backend did not accept
	ErrSubmitFailed = errors.New("failed to submit shipping address")
)

// ValidationError is returned by Submit when the form does not pass the gate
type ValidationError struct {
	Outcome checkout.ValidationOutcome
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Outcome.Errors))
	for field := range e.Outcome.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "address validation failed: " + strings.Join(fields, ", ")
}
