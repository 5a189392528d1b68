package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"loans-service/internal/domain/catalog"
	domain "loans-service/internal/domain/loan"
	"loans-service/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the loans table.
// One connection only: every new connection would see an empty :memory: db.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&domain.Loan{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func makeLoan(patronID string, borrowed time.Time, isbns ...int64) *domain.Loan {
	books := make(domain.Books, 0, len(isbns))
	for _, isbn := range isbns {
		books = append(books, catalog.Book{
			ISBN:       isbn,
			Title:      "Domain-Driven Design",
			Collection: "Software Development",
			Status:     catalog.StatusBorrowed,
			Author:     &catalog.Author{FirstName: "Eric", LastName: "Evans"},
		})
	}
	return &domain.Loan{
		LoanID:          id.NewLoanID(),
		PatronID:        patronID,
		PatronFirstName: "Grace",
		PatronLastName:  "Hopper",
		Books:           books,
		FineID:          "fine-1",
		Status:          domain.StatusActive,
		BorrowedDate:    borrowed,
		DueDate:         borrowed.AddDate(0, 0, 21),
	}
}

func TestCreateAndGetByLoanID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan("patron-1", date(2024, time.March, 1), 111, 222)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByLoanID(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.PatronID != "patron-1" || got.PatronFirstName != "Grace" || got.FineID != "fine-1" {
		t.Errorf("unexpected loan: %+v", got)
	}
	if got.Status != domain.StatusActive {
		t.Errorf("status = %s", got.Status)
	}
	if len(got.Books) != 2 || got.Books[0].ISBN != 111 || got.Books[1].ISBN != 222 {
		t.Fatalf("books not round-tripped in order: %+v", got.Books)
	}
	if got.Books[0].Author == nil || got.Books[0].Author.LastName != "Evans" {
		t.Errorf("author snapshot lost: %+v", got.Books[0])
	}
	if !got.BorrowedDate.Equal(date(2024, time.March, 1)) || !got.DueDate.Equal(date(2024, time.March, 22)) {
		t.Errorf("dates: borrowed=%s due=%s", got.BorrowedDate, got.DueDate)
	}
	if got.ReturnedDate != nil {
		t.Errorf("returned date should be nil, got %s", got.ReturnedDate)
	}
}

func TestCreate_DuplicateLoanIDFails(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan("patron-1", date(2024, time.March, 1), 111)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := makeLoan("patron-2", date(2024, time.March, 2), 222)
	dup.LoanID = l.LoanID
	if err := repo.Create(ctx, dup); err == nil {
		t.Fatalf("expected unique violation on loan_id")
	}
}

func TestSaveUpdates(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan("patron-1", date(2024, time.March, 1), 111, 222)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	returned := date(2024, time.March, 26)
	l.Status = domain.StatusReturned
	l.ReturnedDate = &returned
	l.Books = l.Books[:1]
	l.Books[0].Status = catalog.StatusAvailable
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.Status != domain.StatusReturned {
		t.Errorf("status not updated: %s", got.Status)
	}
	if got.ReturnedDate == nil || !got.ReturnedDate.Equal(returned) {
		t.Errorf("returned date = %v, want %s", got.ReturnedDate, returned)
	}
	if len(got.Books) != 1 || got.Books[0].Status != catalog.StatusAvailable {
		t.Errorf("books not updated: %+v", got.Books)
	}
}

func TestGetByLoanID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	got, err := repo.GetByLoanID(ctx, id.NewLoanID())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil loan, got %+v", got)
	}
	if _, err := repo.GetByLoanIDForUpdate(ctx, id.NewLoanID()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("ForUpdate: expected ErrRecordNotFound, got %v", err)
	}
}

func TestListByPatronID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	later := makeLoan("patron-1", date(2024, time.April, 5), 111)
	earlier := makeLoan("patron-1", date(2024, time.March, 1), 222)
	other := makeLoan("patron-2", date(2024, time.March, 2), 333)
	for _, l := range []*domain.Loan{later, earlier, other} {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListByPatronID(ctx, "patron-1")
	if err != nil {
		t.Fatalf("ListByPatronID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 loans, got %d", len(got))
	}
	if got[0].LoanID != earlier.LoanID || got[1].LoanID != later.LoanID {
		t.Fatalf("want borrowed-date order, got %s then %s", got[0].LoanID, got[1].LoanID)
	}

	none, err := repo.ListByPatronID(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByPatronID(nobody): %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", none)
	}
}

func TestDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan("patron-1", date(2024, time.March, 1), 111)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, l); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByLoanID(ctx, l.LoanID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	var count int64
	if err := db.Unscoped().Model(&domain.Loan{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("delete should remove the row, %d left", count)
	}

	if err := repo.Delete(ctx, l); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete: expected ErrRecordNotFound, got %v", err)
	}
}
