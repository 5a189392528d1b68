package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	loanDomain "loans-service/internal/domain/loan"
	"loans-service/internal/domain/uow"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func seedLoan(t *testing.T, db *gorm.DB) *loanDomain.Loan {
	t.Helper()
	l := makeLoan("patron-1", date(2024, time.March, 1), 111)
	if err := NewLoanRepository(db).Create(context.Background(), l); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return l
}

// ----------------------------- Tests -----------------------------

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seeded := seedLoan(t, db)

	err := NewGormUoW(db).WithinLoanTx(ctx, seeded.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l.LoanID != seeded.LoanID {
			t.Fatalf("locked wrong loan: %s", l.LoanID)
		}
		l.Status = loanDomain.StatusReturned
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx commit err: %v", err)
	}

	got, err := NewLoanRepository(db).GetByLoanID(ctx, seeded.LoanID)
	if err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	if got.Status != loanDomain.StatusReturned {
		t.Fatalf("status = %s, want RETURNED", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seeded := seedLoan(t, db)
	wantErr := errors.New("boom")

	err := NewGormUoW(db).WithinLoanTx(ctx, seeded.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		l.Status = loanDomain.StatusReturned
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return wantErr // force rollback
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("want %v, got %v", wantErr, err)
	}

	got, err := NewLoanRepository(db).GetByLoanID(ctx, seeded.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.Status != loanDomain.StatusActive {
		t.Fatalf("save should be rolled back, status = %s", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_DeleteInsideTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seeded := seedLoan(t, db)

	err := NewGormUoW(db).WithinLoanTx(ctx, seeded.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		return r.Loans.Delete(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}
	if _, err := NewLoanRepository(db).GetByLoanID(ctx, seeded.LoanID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_NotFound(t *testing.T) {
	db := openTestDB(t)
	called := false

	err := NewGormUoW(db).WithinLoanTx(context.Background(), "missing", func(uow.Repos, *loanDomain.Loan) error {
		called = true
		return nil
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
	if called {
		t.Fatalf("fn must not run when the loan does not exist")
	}
}

// On MySQL the loan row is read with SELECT ... FOR UPDATE inside the tx.
func TestGormUoW_WithinLoanTx_LocksRowOnMySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `loans` WHERE loan_id = .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "patron_id", "status"}).
			AddRow(7, "loan-7", "patron-1", "ACTIVE"))
	mock.ExpectRollback()

	stop := errors.New("stop")
	err = NewGormUoW(gdb).WithinLoanTx(context.Background(), "loan-7", func(_ uow.Repos, l *loanDomain.Loan) error {
		if l.ID != 7 || l.PatronID != "patron-1" {
			t.Fatalf("unexpected row: %+v", l)
		}
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("want %v, got %v", stop, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
