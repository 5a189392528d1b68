package http

import (
	"errors"
	"log"
	"net/http"

	"loans-service/internal/adapter/client"
	"loans-service/internal/domain/fine"
	"loans-service/internal/domain/loan"

	"github.com/labstack/echo/v4"
)

// ---- error → status ----

func statusFor(err error) int {
	var (
		upstream    *client.HTTPError
		unreachable *client.UnreachableError
	)
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrUnavailableBook), errors.Is(err, fine.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, loan.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstream), errors.As(err, &unreachable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its mapped status. Unexpected errors are logged
// and answered with a generic message.
func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case http.StatusInternalServerError:
		log.Printf("loans: %s %s failed: %v", c.Request().Method, c.Path(), err)
		msg = "internal error"
	case http.StatusBadGateway:
		log.Printf("loans: %s %s upstream failure: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}
