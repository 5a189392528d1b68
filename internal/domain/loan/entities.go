package loan

import (
	"errors"
	"time"

	"loans-service/internal/domain/catalog"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
)

func (s Status) Valid() bool { return s == StatusActive || s == StatusReturned }

var (
	ErrNotFound          = errors.New("not found")
	ErrUnavailableBook   = errors.New("book unavailable")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrInvalidInput      = errors.New("invalid input")
)

// Books is the ordered list of book snapshots embedded in a loan.
type Books []catalog.Book

// Find returns the snapshot for isbn, if the loan holds it.
func (b Books) Find(isbn int64) (catalog.Book, bool) {
	for _, bk := range b {
		if bk.ISBN == isbn {
			return bk, true
		}
	}
	return catalog.Book{}, false
}

// Loan is the aggregate persisted by the loan store. Patron and book data are
// snapshots taken when the loan was written; FineID is a weak reference into
// the fines service.
type Loan struct {
	ID              uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string     `gorm:"size:36;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	PatronID        string     `gorm:"size:64;not null;index:idx_loans_patron_id" json:"patron_id"`
	PatronFirstName string     `gorm:"size:128" json:"patron_first_name"`
	PatronLastName  string     `gorm:"size:128" json:"patron_last_name"`
	Books           Books      `gorm:"serializer:json;type:json" json:"books"`
	FineID          string     `gorm:"size:64;not null" json:"fine_id"`
	Status          Status     `gorm:"size:16;not null;default:'ACTIVE'" json:"status"`
	BorrowedDate    time.Time  `gorm:"type:date;not null" json:"borrowed_date"`
	DueDate         time.Time  `gorm:"type:date;not null" json:"due_date"`
	ReturnedDate    *time.Time `gorm:"type:date" json:"returned_date"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) Returned() bool { return l.Status == StatusReturned }
