package rowparse

import (
	"errors"
	"fmt"
)

// Parsing errors.
var (
	ErrBlankRow      = errors.New("blank row")
	ErrEmpty         = errors.New("value is empty")
	ErrInvalidDate   = errors.New("unrecognized date")
	ErrAmbiguousDate = errors.New("two-digit year is ambiguous")
	ErrInvalidAmount = errors.New("not a number")
	ErrNegative      = errors.New("amount is negative")
	ErrInvalidID     = errors.New("invalid identifier")
)

// ParseError reports a row-local problem with one field.
type ParseError struct {
	Err   error
	Field Field
	Value string
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrEmpty) {
		return fmt.Sprintf("missing %s", e.Field.Label())
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field.Label(), e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func fieldError(field Field, value string, err error) *ParseError {
	return &ParseError{Field: field, Value: value, Err: err}
}
