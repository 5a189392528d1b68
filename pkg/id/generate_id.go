package id

import "github.com/google/uuid"

// NewLoanID returns a random (v4) UUID in canonical 36-char form.
func NewLoanID() string { return uuid.NewString() }

// IsLoanID reports whether s parses as a canonical UUID.
func IsLoanID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
