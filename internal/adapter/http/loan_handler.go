package http

import (
	"net/http"

	domain "loans-service/internal/domain/loan"
	"loans-service/internal/usecase/loan"
	"loans-service/pkg/id"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

// Register mounts the loan routes on g, which is expected to be
// /api/v1/patrons/:patron_id/loans.
func (h *LoanHandler) Register(g *echo.Group) {
	g.GET("", h.ListLoans)
	g.POST("", h.CreateLoan)
	g.GET("/:loan_id", h.GetLoan)
	g.PUT("/:loan_id", h.UpdateLoan)
	g.DELETE("/:loan_id", h.DeleteLoan)
}

type loanReq struct {
	Status    string  `json:"status"   validate:"omitempty,loanstatus"`
	BookISBNs []int64 `json:"bookISBN" validate:"required,min=1,unique,dive,gt=0"`
}

func (r loanReq) input() loan.LoanInput {
	return loan.LoanInput{Status: domain.Status(r.Status), BookISBNs: r.BookISBNs}
}

// createLoanReq only admits ACTIVE: a loan starts out borrowed.
type createLoanReq struct {
	Status    string  `json:"status"   validate:"omitempty,newloanstatus"`
	BookISBNs []int64 `json:"bookISBN" validate:"required,min=1,unique,dive,gt=0"`
}

func (r createLoanReq) input() loan.LoanInput {
	return loan.LoanInput{Status: domain.Status(r.Status), BookISBNs: r.BookISBNs}
}

// bindLoanReq writes the 400/422 response itself and reports whether the
// handler may continue.
func bindLoanReq(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// loanIDParam rejects ids that cannot exist before any collaborator is asked.
func loanIDParam(c echo.Context) (string, bool) {
	loanID := c.Param("loan_id")
	return loanID, id.IsLoanID(loanID)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	out, err := h.uc.ListForPatron(c.Request().Context(), c.Param("patron_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid loanId: " + loanID})
	}
	dto, err := h.uc.GetForPatron(c.Request().Context(), c.Param("patron_id"), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindLoanReq(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), c.Param("patron_id"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) UpdateLoan(c echo.Context) error {
	loanID, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid loanId: " + loanID})
	}
	var req loanReq
	if ok, err := bindLoanReq(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Update(c.Request().Context(), c.Param("patron_id"), loanID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	loanID, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid loanId: " + loanID})
	}
	if err := h.uc.Delete(c.Request().Context(), c.Param("patron_id"), loanID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
