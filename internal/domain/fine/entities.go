package fine

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("fine not found")
	ErrInvalidAmount = errors.New("invalid fine amount")
)

// Fine mirrors a fines-service record. Reason and IsPaid stay nil until a
// late return fills them in.
type Fine struct {
	FineID string          `json:"fineId"`
	Amount decimal.Decimal `json:"amount"`
	Reason *string         `json:"reason"`
	IsPaid *bool           `json:"isPaid"`
}

type Ledger interface {
	Create(ctx context.Context, amount decimal.Decimal, reason *string, isPaid *bool) (*Fine, error)
	GetByID(ctx context.Context, fineID string) (*Fine, error)
	Update(ctx context.Context, fineID string, amount decimal.Decimal, reason *string, isPaid *bool) (*Fine, error)
}
