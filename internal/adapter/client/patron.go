package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"loans-service/internal/domain/patron"
)

type PatronClient struct{ base }

var _ patron.Directory = (*PatronClient)(nil)

func NewPatronClient(baseURL string, timeout time.Duration) *PatronClient {
	return &PatronClient{base: newBase("patrons", baseURL, timeout)}
}

func (c *PatronClient) GetByPatronID(ctx context.Context, patronID string) (*patron.Patron, error) {
	var out patron.Patron
	err := c.do(ctx, http.MethodGet, "/api/v1/patrons/"+url.PathEscape(patronID), nil, &out)
	if err != nil {
		return nil, mapStatus(err, map[int]error{http.StatusNotFound: patron.ErrNotFound})
	}
	return &out, nil
}
