// Package client talks to the patrons, catalog and fines services over
// JSON/HTTP.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// maxErrorBody caps how much of a failed response is kept on HTTPError.
const maxErrorBody = 4 << 10

// HTTPError is a non-2xx answer from a collaborator that has no domain
// meaning.
type HTTPError struct {
	Service    string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s %s: unexpected status %d", e.Service, e.Method, e.URL, e.StatusCode)
}

// Message is the "message" field of the collaborator's error body, or the
// raw body if it has none.
func (e *HTTPError) Message() string {
	var info struct {
		Message string `json:"message"`
	}
	if err := jsonAPI.UnmarshalFromString(e.Body, &info); err == nil && info.Message != "" {
		return info.Message
	}
	return strings.TrimSpace(e.Body)
}

// UnreachableError is a collaborator call that never produced a response:
// connection refused, DNS failure or timeout.
type UnreachableError struct {
	Service string
	Method  string
	URL     string
	Err     error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Service, e.Method, e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

type base struct {
	service string
	baseURL string
	hc      *http.Client
}

func newBase(service, baseURL string, timeout time.Duration) base {
	return base{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// do sends in as the JSON body (when non-nil) and decodes a 2xx response into
// out (when non-nil). Any status >= 400 comes back as *HTTPError, a failed
// round trip as *UnreachableError.
func (b base) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := jsonAPI.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", b.service, err)
		}
		body = bytes.NewReader(buf)
	}

	url := b.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := b.hc.Do(req)
	if err != nil {
		return &UnreachableError{Service: b.service, Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Service: b.service, Method: method, URL: url, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := jsonAPI.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode %s %s: %w", b.service, method, url, err)
	}
	return nil
}

// mapStatus turns well-known statuses into domain sentinels and logs the
// rest before handing them back unchanged.
func mapStatus(err error, known map[int]error) error {
	var he *HTTPError
	if !errors.As(err, &he) {
		return err
	}
	if sentinel, ok := known[he.StatusCode]; ok {
		if msg := he.Message(); msg != "" {
			return fmt.Errorf("%w: %s", sentinel, msg)
		}
		return sentinel
	}
	log.Printf("%s: unexpected HTTP error %d, will rethrow it; body: %s", he.Service, he.StatusCode, he.Body)
	return err
}
