// Package fortifiedhttp is the facade that ties pkg/transport,
// pkg/engine, pkg/retry, pkg/download and pkg/observability into one
// Client: a single functional-options constructor and a handful of
// Get/Post/Put/Delete convenience methods over a transport/retry/
// instrumentation stack.
package fortifiedhttp

import (
	"context"
	"io"
	"net/http"

	"github.com/fortified-go/fortifiedhttp/pkg/download"
	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/observability/noop"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
	"github.com/fortified-go/fortifiedhttp/pkg/transport"
)

// Client is a fortified HTTP session: a pooled *http.Client, a retry
// engine bound to it, and a default retry.Config/retry.Policy applied to
// every call unless a RequestOption overrides it for that one call.
type Client struct {
	engine      *engine.Engine
	retryConfig retry.Config
	policy      retry.Policy
}

// New builds a Client. With no options it matches spec defaults: the
// pooled transport of pkg/transport.New(), retry.DefaultConfig(),
// retry.DefaultPolicy(), a no-op Logger and a fresh MemorySink.
func New(opts ...ClientOption) *Client {
	cfg := config{
		logger:      noop.New(),
		retryConfig: retry.DefaultConfig(),
		policy:      retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := transport.New(cfg.transportOpts...)
	eng := engine.New(httpClient, cfg.sink, cfg.logger, cfg.engineOpts...)

	return &Client{
		engine:      eng,
		retryConfig: cfg.retryConfig,
		policy:      cfg.policy,
	}
}

// Engine exposes the underlying retry engine for callers that need the
// lower-level Do(ctx, RequestSpec, Config, Policy) signature directly,
// e.g. to drive pkg/download.
func (c *Client) Engine() *engine.Engine { return c.engine }

// Do builds a RequestSpec from method/url/body and opts, then runs it
// through the retry engine with this Client's default retry.Config and
// retry.Policy, each overridable per call via WithRetry/WithPolicy.
func (c *Client) Do(ctx context.Context, method, url string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	state := requestState{
		spec:   engine.RequestSpec{Method: method, URL: url, Body: body},
		retry:  c.retryConfig,
		policy: c.policy,
	}
	for _, opt := range opts {
		opt(&state)
	}
	return c.engine.Do(ctx, state.spec, state.retry, state.policy)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil, opts...)
}

// Post issues a POST request with body, or with WithJSONBody/WithFormBody
// supplied via opts when body is nil.
func (c *Client) Post(ctx context.Context, url string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, url, body, opts...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, url string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodPut, url, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, url, nil, opts...)
}

// DownloadCSV streams job through this Client's engine and returns a
// row-by-row CSVIterator, per pkg/download.CSV.
func (c *Client) DownloadCSV(ctx context.Context, job download.Job) (*download.CSVIterator, error) {
	return download.CSV(ctx, c.engine, job)
}

// DownloadJSON streams job through this Client's engine and decodes the
// staged file into v, per pkg/download.JSON.
func (c *Client) DownloadJSON(ctx context.Context, job download.Job, v any) error {
	return download.JSON(ctx, c.engine, job, v)
}
