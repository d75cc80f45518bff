package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the conditions handlers translate into HTTP statuses.
// None of them indicate server faults; all are client-correctable.
var (
	// ErrNotFound means a referenced id does not resolve to an entity.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means a non-owner attempted a mutation.
	ErrForbidden = errors.New("only the author may modify this recipe")
	// ErrAlreadyExists means the relation pair is already present.
	ErrAlreadyExists = errors.New("relation already exists")
	// ErrSelfFollow means a user attempted to follow themselves.
	ErrSelfFollow = errors.New("cannot subscribe to yourself")
	// ErrRelationMissing means a removal targeted a pair that does not exist.
	ErrRelationMissing = errors.New("relation does not exist")
	// ErrEmptyCart means a shopping list was requested with nothing in the cart.
	ErrEmptyCart = errors.New("shopping cart is empty")
)

// ValidationError carries field-scoped messages for a rejected payload.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
