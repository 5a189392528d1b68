package loan

import (
	"time"

	"loans-service/internal/domain/catalog"
	"loans-service/internal/domain/loan"
)

const dateLayout = "2006-01-02"

// LoanInput is shared by create and update. An empty Status means ACTIVE on
// create and "keep current" on update.
type LoanInput struct {
	Status    loan.Status
	BookISBNs []int64
}

type LoanDTO struct {
	LoanID          string         `json:"loanId"`
	PatronID        string         `json:"patronId"`
	PatronFirstName string         `json:"patronFirstName"`
	PatronLastName  string         `json:"patronLastName"`
	FineID          string         `json:"fineId"`
	Status          string         `json:"status"`
	BorrowedDate    string         `json:"borrowedDate"`
	DueDate         string         `json:"dueDate"`
	ReturnedDate    *string        `json:"returnedDate"`
	Books           []catalog.Book `json:"books"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	books := make([]catalog.Book, len(l.Books))
	copy(books, l.Books)
	dto := &LoanDTO{
		LoanID:          l.LoanID,
		PatronID:        l.PatronID,
		PatronFirstName: l.PatronFirstName,
		PatronLastName:  l.PatronLastName,
		FineID:          l.FineID,
		Status:          string(l.Status),
		BorrowedDate:    formatDate(l.BorrowedDate),
		DueDate:         formatDate(l.DueDate),
		Books:           books,
	}
	if l.ReturnedDate != nil {
		s := formatDate(*l.ReturnedDate)
		dto.ReturnedDate = &s
	}
	return dto
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }
