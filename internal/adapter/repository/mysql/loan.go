package mysql

import (
	"context"

	loanDomain "loans-service/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

var _ loanDomain.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByLoanIDForUpdate is GetByLoanID with SELECT ... FOR UPDATE; only
// meaningful inside a transaction.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) ListByPatronID(ctx context.Context, patronID string) ([]loanDomain.Loan, error) {
	out := []loanDomain.Loan{}
	err := r.db.WithContext(ctx).
		Where("patron_id = ?", patronID).
		Order("borrowed_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

// Delete hard-deletes the row; gorm.ErrRecordNotFound if it was already gone.
func (r *LoanRepository) Delete(ctx context.Context, l *loanDomain.Loan) error {
	res := r.db.WithContext(ctx).Where("loan_id = ?", l.LoanID).Delete(&loanDomain.Loan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
