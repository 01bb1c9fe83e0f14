// Package provider contains the provider adapters and their registry.
package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

// DefaultTimeout bounds a single provider exchange when the caller does
// not impose its own deadline.
const DefaultTimeout = 60 * time.Second

// Transport performs the single HTTP exchange for a built wire request.
// There is one POST per send: no retries, no streaming, no partial
// results. Either the full body arrives or an error is reported.
type Transport struct {
	httpClient *http.Client
}

// TransportOption is a functional option for configuring the Transport.
type TransportOption func(*Transport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) TransportOption {
	return func(t *Transport) {
		t.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) TransportOption {
	return func(t *Transport) {
		t.httpClient.Timeout = timeout
	}
}

// NewTransport creates a transport with the default timeout.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do posts the wire request and returns the raw response body.
// A transport failure or a non-2xx status yields a ProviderError; the
// error carries the status code and raw payload when available.
func (t *Transport) Do(ctx context.Context, req *ports.WireRequest) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, errors.NewTransportError(err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewProviderError(resp.StatusCode, string(body))
	}

	return body, nil
}
