package finemock

import (
	"context"
	"fmt"

	domain "loans-service/internal/domain/fine"

	"github.com/shopspring/decimal"
)

// Ledger is an in-memory fines service. Counters let tests assert which
// calls happened.
type Ledger struct {
	Fines map[string]domain.Fine

	Creates, Gets, Updates int
	// Err, when set, fails every call.
	Err error
}

var _ domain.Ledger = (*Ledger)(nil)

func New() *Ledger { return &Ledger{Fines: map[string]domain.Fine{}} }

func (m *Ledger) Create(_ context.Context, amount decimal.Decimal, reason *string, isPaid *bool) (*domain.Fine, error) {
	m.Creates++
	if m.Err != nil {
		return nil, m.Err
	}
	f := domain.Fine{FineID: fmt.Sprintf("fine-%d", len(m.Fines)+1), Amount: amount, Reason: reason, IsPaid: isPaid}
	m.Fines[f.FineID] = f
	return &f, nil
}

func (m *Ledger) GetByID(_ context.Context, fineID string) (*domain.Fine, error) {
	m.Gets++
	if m.Err != nil {
		return nil, m.Err
	}
	f, ok := m.Fines[fineID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (m *Ledger) Update(_ context.Context, fineID string, amount decimal.Decimal, reason *string, isPaid *bool) (*domain.Fine, error) {
	m.Updates++
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.Fines[fineID]; !ok {
		return nil, domain.ErrNotFound
	}
	f := domain.Fine{FineID: fineID, Amount: amount, Reason: reason, IsPaid: isPaid}
	m.Fines[fineID] = f
	return &f, nil
}
