package client

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"loans-service/internal/domain/catalog"
)

type CatalogClient struct{ base }

var _ catalog.Store = (*CatalogClient)(nil)

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{base: newBase("catalog", baseURL, timeout)}
}

var catalogErrors = map[int]error{http.StatusNotFound: catalog.ErrNotFound}

func bookPath(isbn int64) string { return "/api/v1/books/" + strconv.FormatInt(isbn, 10) }

func (c *CatalogClient) GetByISBN(ctx context.Context, isbn int64) (*catalog.Book, error) {
	var out catalog.Book
	if err := c.do(ctx, http.MethodGet, bookPath(isbn), nil, &out); err != nil {
		return nil, mapStatus(err, catalogErrors)
	}
	// a null body carries no book
	if out.ISBN == 0 {
		return nil, catalog.ErrNotFound
	}
	return &out, nil
}

type statusPatch struct {
	Status catalog.Status `json:"status"`
}

func (c *CatalogClient) PatchStatus(ctx context.Context, isbn int64, status catalog.Status) (*catalog.Book, error) {
	var out catalog.Book
	if err := c.do(ctx, http.MethodPatch, bookPath(isbn), statusPatch{Status: status}, &out); err != nil {
		return nil, mapStatus(err, catalogErrors)
	}
	return &out, nil
}
