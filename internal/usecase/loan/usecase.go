package loan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"loans-service/internal/domain/catalog"
	"loans-service/internal/domain/fine"
	"loans-service/internal/domain/loan"
	"loans-service/internal/domain/patron"
	"loans-service/internal/domain/uow"
	"loans-service/pkg/id"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("loans-service/usecase/loan")

// Usecase orchestrates a loan across the patron, catalog and fine services.
// Remote calls run one at a time in request order and are never retried;
// work already committed to a collaborator is not undone unless
// compensation is switched on.
type Usecase struct {
	repo    loan.Repository
	uow     uow.UnitOfWork
	patrons patron.Directory
	books   catalog.Store
	fines   fine.Ledger

	now        func() time.Time
	compensate bool
}

type Option func(*Usecase)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// WithCompensation makes a failed create/update revert the books that the
// same request patched to BORROWED.
func WithCompensation(on bool) Option { return func(u *Usecase) { u.compensate = on } }

func NewUsecase(r loan.Repository, tx uow.UnitOfWork, p patron.Directory, c catalog.Store, f fine.Ledger, opts ...Option) *Usecase {
	u := &Usecase{repo: r, uow: tx, patrons: p, books: c, fines: f, now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) ListForPatron(ctx context.Context, patronID string) (out []LoanDTO, err error) {
	ctx, span := tracer.Start(ctx, "loan.ListForPatron", trace.WithAttributes(attribute.String("patron.id", patronID)))
	defer func() { endSpan(span, err) }()

	if _, err := u.requirePatron(ctx, patronID); err != nil {
		return nil, err
	}
	loans, err := u.repo.ListByPatronID(ctx, patronID)
	if err != nil {
		return nil, err
	}
	out = make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i]))
	}
	return out, nil
}

func (u *Usecase) GetForPatron(ctx context.Context, patronID, loanID string) (dto *LoanDTO, err error) {
	ctx, span := tracer.Start(ctx, "loan.GetForPatron", loanAttrs(patronID, loanID))
	defer func() { endSpan(span, err) }()

	if _, err := u.requirePatron(ctx, patronID); err != nil {
		return nil, err
	}
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, loanLookupErr(err, loanID)
	}
	if l.PatronID != patronID {
		return nil, loanNotFound(loanID)
	}
	return toDTO(l), nil
}

func (u *Usecase) Create(ctx context.Context, patronID string, in LoanInput) (dto *LoanDTO, err error) {
	ctx, span := tracer.Start(ctx, "loan.Create", trace.WithAttributes(
		attribute.String("patron.id", patronID),
		attribute.Int("loan.books", len(in.BookISBNs)),
	))
	defer func() { endSpan(span, err) }()

	status := in.Status
	if status == "" {
		status = loan.StatusActive
	}
	if status != loan.StatusActive {
		return nil, fmt.Errorf("%w: a new loan must be ACTIVE, got %q", loan.ErrInvalidInput, status)
	}
	if len(in.BookISBNs) == 0 {
		return nil, fmt.Errorf("%w: at least one ISBN is required", loan.ErrInvalidInput)
	}

	p, err := u.requirePatron(ctx, patronID)
	if err != nil {
		return nil, err
	}

	var patched []int64
	defer func() {
		if err != nil {
			u.release(ctx, patched)
		}
	}()

	books := make(loan.Books, 0, len(in.BookISBNs))
	for _, isbn := range in.BookISBNs {
		b, err := u.borrow(ctx, isbn)
		if err != nil {
			return nil, err
		}
		patched = append(patched, isbn)
		books = append(books, *b)
	}

	f, err := u.fines.Create(ctx, decimal.Zero, nil, nil)
	if err != nil {
		return nil, err
	}

	today := u.today()
	l := &loan.Loan{
		LoanID:          id.NewLoanID(),
		PatronID:        p.PatronID,
		PatronFirstName: p.FirstName,
		PatronLastName:  p.LastName,
		Books:           books,
		FineID:          f.FineID,
		Status:          status,
		BorrowedDate:    today,
		DueDate:         DueDate(today),
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("loan.id", l.LoanID))
	return toDTO(l), nil
}

// Update replaces the loan's book set and, on ACTIVE → RETURNED, releases
// the books and applies the late fee. The loan row stays locked for the
// whole call so concurrent updates of one loan run one after another.
func (u *Usecase) Update(ctx context.Context, patronID, loanID string, in LoanInput) (dto *LoanDTO, err error) {
	ctx, span := tracer.Start(ctx, "loan.Update", loanAttrs(patronID, loanID))
	defer func() { endSpan(span, err) }()

	if (in.Status != "" && !in.Status.Valid()) || len(in.BookISBNs) == 0 {
		return nil, fmt.Errorf("%w: status must be ACTIVE or RETURNED and at least one ISBN is required", loan.ErrInvalidInput)
	}
	if _, err := u.requirePatron(ctx, patronID); err != nil {
		return nil, err
	}

	var patched []int64
	defer func() {
		if err != nil {
			u.release(ctx, patched)
		}
	}()

	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.PatronID != patronID {
			return loanNotFound(loanID)
		}

		wasReturned := l.Returned()
		target := l.Status
		if in.Status != "" {
			target = in.Status
		}
		if wasReturned {
			if target != loan.StatusReturned {
				return fmt.Errorf("%w: loan %s is already returned", loan.ErrInvalidTransition, loanID)
			}
			if !sameISBNs(l.Books, in.BookISBNs) {
				return fmt.Errorf("%w: books of returned loan %s cannot change", loan.ErrInvalidTransition, loanID)
			}
		}

		books := make(loan.Books, 0, len(in.BookISBNs))
		for _, isbn := range in.BookISBNs {
			if kept, ok := l.Books.Find(isbn); ok {
				books = append(books, kept)
				continue
			}
			b, err := u.borrow(ctx, isbn)
			if err != nil {
				return err
			}
			patched = append(patched, isbn)
			books = append(books, *b)
		}

		if !wasReturned {
			for _, old := range l.Books {
				if _, ok := books.Find(old.ISBN); ok {
					continue
				}
				if _, err := u.books.PatchStatus(ctx, old.ISBN, catalog.StatusAvailable); err != nil {
					return err
				}
			}
		}

		l.Books = books
		l.Status = target
		if !wasReturned && l.Returned() {
			if err := u.closeLoan(ctx, l); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, loanLookupErr(err, loanID)
	}
	return dto, nil
}

// Delete removes the loan record only. Books keep their catalog status and
// the fine stays in the ledger.
func (u *Usecase) Delete(ctx context.Context, patronID, loanID string) (err error) {
	ctx, span := tracer.Start(ctx, "loan.Delete", loanAttrs(patronID, loanID))
	defer func() { endSpan(span, err) }()

	if _, err := u.requirePatron(ctx, patronID); err != nil {
		return err
	}
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.PatronID != patronID {
			return loanNotFound(loanID)
		}
		return r.Loans.Delete(ctx, l)
	})
	if err != nil {
		return loanLookupErr(err, loanID)
	}
	return nil
}

// closeLoan runs the ACTIVE → RETURNED side effects on l.
func (u *Usecase) closeLoan(ctx context.Context, l *loan.Loan) error {
	for i := range l.Books {
		if _, err := u.books.PatchStatus(ctx, l.Books[i].ISBN, catalog.StatusAvailable); err != nil {
			return err
		}
		l.Books[i].Status = catalog.StatusAvailable
	}
	if l.ReturnedDate == nil {
		today := u.today()
		l.ReturnedDate = &today
	}

	days := DaysLate(l.DueDate, *l.ReturnedDate)
	if days <= 0 {
		return nil
	}
	f, err := u.fines.GetByID(ctx, l.FineID)
	if err != nil {
		if errors.Is(err, fine.ErrNotFound) {
			return fmt.Errorf("%w: invalid fineId: %s", loan.ErrNotFound, l.FineID)
		}
		return err
	}
	reason, paid := LateReturnReason, false
	_, err = u.fines.Update(ctx, f.FineID, LateFee(days, len(l.Books)), &reason, &paid)
	return err
}

// borrow checks that isbn is loanable and flips it to BORROWED.
func (u *Usecase) borrow(ctx context.Context, isbn int64) (*catalog.Book, error) {
	b, err := u.books.GetByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid ISBN: %d", loan.ErrNotFound, isbn)
		}
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: invalid ISBN: %d", loan.ErrNotFound, isbn)
	}
	if !b.Status.Loanable() {
		return nil, unavailable(isbn, b.Status)
	}
	return u.books.PatchStatus(ctx, isbn, catalog.StatusBorrowed)
}

// release puts books this request borrowed back to AVAILABLE. Failures are
// logged only; the caller already has an error to report.
func (u *Usecase) release(ctx context.Context, isbns []int64) {
	if !u.compensate || len(isbns) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, isbn := range isbns {
		if _, err := u.books.PatchStatus(ctx, isbn, catalog.StatusAvailable); err != nil {
			log.Printf("loan: compensation failed for ISBN %d: %v", isbn, err)
		}
	}
}

func (u *Usecase) requirePatron(ctx context.Context, patronID string) (*patron.Patron, error) {
	p, err := u.patrons.GetByPatronID(ctx, patronID)
	switch {
	case err == nil && p != nil:
		return p, nil
	case err == nil, errors.Is(err, patron.ErrNotFound):
		return nil, fmt.Errorf("%w: invalid patronId: %s", loan.ErrNotFound, patronID)
	default:
		return nil, err
	}
}

func (u *Usecase) today() time.Time { return calendarDate(u.now().UTC()) }

func unavailable(isbn int64, s catalog.Status) error {
	var why string
	switch s {
	case catalog.StatusBorrowed:
		why = "is already borrowed"
	case catalog.StatusLost:
		why = "is lost"
	case catalog.StatusDamaged:
		why = "is damaged"
	default:
		why = "is " + strings.ToLower(string(s))
	}
	return fmt.Errorf("%w: book with ISBN %d %s", loan.ErrUnavailableBook, isbn, why)
}

func loanNotFound(loanID string) error {
	return fmt.Errorf("%w: invalid loanId: %s", loan.ErrNotFound, loanID)
}

func loanLookupErr(err error, loanID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loanNotFound(loanID)
	}
	return err
}

func sameISBNs(books loan.Books, isbns []int64) bool {
	if len(books) != len(isbns) {
		return false
	}
	for _, isbn := range isbns {
		if _, ok := books.Find(isbn); !ok {
			return false
		}
	}
	return true
}

func loanAttrs(patronID, loanID string) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("patron.id", patronID),
		attribute.String("loan.id", loanID),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
