package uow

import (
	"context"

	"loans-service/internal/domain/loan"
)

type Repos struct {
	Loans loan.Repository
}

type UnitOfWork interface {
	// lock the loan first, then pass it in; fn's error rolls back
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
