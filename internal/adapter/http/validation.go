package http

import (
	"errors"
	"reflect"
	"strings"

	"loans-service/internal/domain/loan"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their JSON name, e.g. "bookISBN"
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// loan status = ACTIVE | RETURNED
	_ = v.RegisterValidation("loanstatus", func(fl validator.FieldLevel) bool {
		return loan.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("newloanstatus", func(fl validator.FieldLevel) bool {
		return loan.Status(fl.Field().String()) == loan.StatusActive
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "loanstatus":
			out = append(out, FieldError{Field: field, Message: "must be ACTIVE or RETURNED"})
		case "newloanstatus":
			out = append(out, FieldError{Field: field, Message: "must be ACTIVE for a new loan"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must contain at least " + e.Param() + " item(s)"})
		case "unique":
			out = append(out, FieldError{Field: field, Message: "must not contain duplicates"})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
