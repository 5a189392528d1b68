package patron

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("patron not found")

// Patron is the slice of a patron record the loans service projects.
type Patron struct {
	PatronID  string `json:"patronId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Directory resolves patron identifiers. Implementations return ErrNotFound
// (possibly wrapped) for unknown ids.
type Directory interface {
	GetByPatronID(ctx context.Context, patronID string) (*Patron, error)
}
