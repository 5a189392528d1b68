package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"loans-service/internal/domain/fine"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

type FineClient struct{ base }

var _ fine.Ledger = (*FineClient)(nil)

func NewFineClient(baseURL string, timeout time.Duration) *FineClient {
	return &FineClient{base: newBase("fines", baseURL, timeout)}
}

var fineErrors = map[int]error{
	http.StatusNotFound:            fine.ErrNotFound,
	http.StatusUnprocessableEntity: fine.ErrInvalidAmount,
}

// fineBody puts the amount on the wire as a plain number with two decimals.
type fineBody struct {
	Amount jsoniter.Number `json:"amount"`
	Reason *string         `json:"reason"`
	IsPaid *bool           `json:"isPaid"`
}

func newFineBody(amount decimal.Decimal, reason *string, isPaid *bool) fineBody {
	return fineBody{Amount: jsoniter.Number(amount.StringFixed(2)), Reason: reason, IsPaid: isPaid}
}

const finesPath = "/api/v1/fines"

func (c *FineClient) Create(ctx context.Context, amount decimal.Decimal, reason *string, isPaid *bool) (*fine.Fine, error) {
	var out fine.Fine
	if err := c.do(ctx, http.MethodPost, finesPath, newFineBody(amount, reason, isPaid), &out); err != nil {
		return nil, mapStatus(err, fineErrors)
	}
	return &out, nil
}

func (c *FineClient) GetByID(ctx context.Context, fineID string) (*fine.Fine, error) {
	var out fine.Fine
	if err := c.do(ctx, http.MethodGet, finesPath+"/"+url.PathEscape(fineID), nil, &out); err != nil {
		return nil, mapStatus(err, fineErrors)
	}
	return &out, nil
}

// Update replaces the fine and reads it back; the PUT response body is
// ignored.
func (c *FineClient) Update(ctx context.Context, fineID string, amount decimal.Decimal, reason *string, isPaid *bool) (*fine.Fine, error) {
	if err := c.do(ctx, http.MethodPut, finesPath+"/"+url.PathEscape(fineID), newFineBody(amount, reason, isPaid), nil); err != nil {
		return nil, mapStatus(err, fineErrors)
	}
	return c.GetByID(ctx, fineID)
}
