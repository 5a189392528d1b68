package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("book not found")

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusBorrowed  Status = "BORROWED"
	StatusLost      Status = "LOST"
	StatusDamaged   Status = "DAMAGED"
)

// Loanable reports whether a book in this status may be put on a loan.
func (s Status) Loanable() bool { return s == StatusAvailable }

type Author struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Book is a point-in-time copy of a catalog record.
type Book struct {
	ISBN       int64   `json:"isbn"`
	CatalogID  string  `json:"catalogId,omitempty"`
	Title      string  `json:"title"`
	Collection string  `json:"collection"`
	Status     Status  `json:"status"`
	Author     *Author `json:"author,omitempty"`
}

// Store is the catalog service as seen by the loans service.
type Store interface {
	GetByISBN(ctx context.Context, isbn int64) (*Book, error)
	// PatchStatus sets the book status and returns the updated record.
	PatchStatus(ctx context.Context, isbn int64, status Status) (*Book, error)
}
