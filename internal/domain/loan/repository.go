package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the row until the surrounding tx ends.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByPatronID(ctx context.Context, patronID string) ([]Loan, error)
	// Delete removes the loan permanently.
	Delete(ctx context.Context, l *Loan) error
}
