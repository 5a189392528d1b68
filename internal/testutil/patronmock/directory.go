package patronmock

import (
	"context"

	domain "loans-service/internal/domain/patron"
)

// Directory is a function-backed mock of domain.Directory.
type Directory struct {
	GetByPatronIDFn func(ctx context.Context, patronID string) (*domain.Patron, error)
}

var _ domain.Directory = (*Directory)(nil)

func (m *Directory) GetByPatronID(ctx context.Context, patronID string) (*domain.Patron, error) {
	if m.GetByPatronIDFn != nil {
		return m.GetByPatronIDFn(ctx, patronID)
	}
	return nil, context.Canceled
}

// Known answers for the given patrons and ErrNotFound for everyone else.
func Known(patrons ...domain.Patron) *Directory {
	byID := make(map[string]domain.Patron, len(patrons))
	for _, p := range patrons {
		byID[p.PatronID] = p
	}
	return &Directory{GetByPatronIDFn: func(_ context.Context, patronID string) (*domain.Patron, error) {
		p, ok := byID[patronID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		return &p, nil
	}}
}
