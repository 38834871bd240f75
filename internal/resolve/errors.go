// Package resolve maps free-text references in import rows to stored
// entities: insurance companies, clients and policies.
//
// Every resolver is built from one fresh fetch at the start of an import run
// and then consulted row by row. Ties are broken by a fixed iteration order,
// so the same input always resolves to the same entity; a real fuzzy matcher
// would need scored candidates instead.
package resolve

import (
	"errors"
	"fmt"
)

// ErrUnresolved is matched by every *ResolutionError.
var ErrUnresolved = errors.New("reference not resolved")

// Kind names the type of reference that failed to resolve.
type Kind string

// Reference kinds.
const (
	KindCompany Kind = "company"
	KindClient  Kind = "client"
	KindPolicy  Kind = "policy"
)

// ResolutionError reports a row-local reference that could not be mapped to
// a stored entity.
type ResolutionError struct {
	Kind   Kind
	Input  string
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s %q %s", e.Kind, e.Input, e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return ErrUnresolved
}

func notFound(kind Kind, input string) *ResolutionError {
	return &ResolutionError{Kind: kind, Input: input, Reason: "not found"}
}
