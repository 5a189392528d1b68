package loanmock

import (
	"context"

	domain "loans-service/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes are no-ops.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByPatronIDFn       func(ctx context.Context, patronID string) ([]domain.Loan, error)
	DeleteFn               func(ctx context.Context, l *domain.Loan) error
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByPatronID(ctx context.Context, patronID string) ([]domain.Loan, error) {
	if m.ListByPatronIDFn != nil {
		return m.ListByPatronIDFn(ctx, patronID)
	}
	return nil, context.Canceled
}

func (m *Repo) Delete(ctx context.Context, l *domain.Loan) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, l)
	}
	return nil
}
