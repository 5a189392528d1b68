package catalogmock

import (
	"context"

	domain "loans-service/internal/domain/catalog"
)

// Call records one collaborator call, in order.
type Call struct {
	Op     string // "get" or "patch"
	ISBN   int64
	Status domain.Status
}

// Memory is an in-memory catalog that records every call it receives.
type Memory struct {
	Books map[int64]domain.Book
	Calls []Call

	// FailPatch, when set, is returned by PatchStatus for that ISBN.
	FailPatch map[int64]error
}

var _ domain.Store = (*Memory)(nil)

func NewMemory(books ...domain.Book) *Memory {
	m := &Memory{Books: make(map[int64]domain.Book, len(books)), FailPatch: map[int64]error{}}
	for _, b := range books {
		m.Books[b.ISBN] = b
	}
	return m
}

func (m *Memory) GetByISBN(_ context.Context, isbn int64) (*domain.Book, error) {
	m.Calls = append(m.Calls, Call{Op: "get", ISBN: isbn})
	b, ok := m.Books[isbn]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (m *Memory) PatchStatus(_ context.Context, isbn int64, status domain.Status) (*domain.Book, error) {
	m.Calls = append(m.Calls, Call{Op: "patch", ISBN: isbn, Status: status})
	if err := m.FailPatch[isbn]; err != nil {
		return nil, err
	}
	b, ok := m.Books[isbn]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.Status = status
	m.Books[isbn] = b
	return &b, nil
}

// Patches returns the patch calls only.
func (m *Memory) Patches() []Call {
	var out []Call
	for _, c := range m.Calls {
		if c.Op == "patch" {
			out = append(out, c)
		}
	}
	return out
}

func (m *Memory) StatusOf(isbn int64) domain.Status { return m.Books[isbn].Status }
