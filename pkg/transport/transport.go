// Package transport builds the pooled *http.Transport / *http.Client a
// single session speaks over. It owns connection pooling and per-attempt
// timeouts only; retry sequencing, response classification and error
// translation live one layer up in pkg/engine.
package transport

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Default connection-pool settings for a long-lived fortified session.
const (
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultMaxConnsPerHost     = 0 // unlimited
	DefaultIdleConnTimeout     = 90 * time.Second

	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second

	// DefaultClientTimeout bounds a single attempt end-to-end; the
	// engine's retry loop, not this client, governs overall call time.
	DefaultClientTimeout = 60 * time.Second
)

// Options configures the client built by New.
type Options struct {
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	ResponseHeaderTimeout time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	ClientTimeout         time.Duration

	// DisableKeepAlives, DisableCompression and InsecureSkipVerify are
	// escape hatches for test doubles and corporate proxies; left false
	// by default so every attempt reuses connections and negotiates
	// compression normally.
	DisableKeepAlives  bool
	DisableCompression bool
	InsecureSkipVerify bool

	// RoundTripper overrides the pooled *http.Transport entirely, e.g. to
	// point a session at an httptest.Server's in-memory dialer.
	RoundTripper http.RoundTripper
}

// Option mutates Options.
type Option func(*Options)

func WithMaxIdleConns(n int) Option          { return func(o *Options) { o.MaxIdleConns = n } }
func WithMaxIdleConnsPerHost(n int) Option   { return func(o *Options) { o.MaxIdleConnsPerHost = n } }
func WithMaxConnsPerHost(n int) Option       { return func(o *Options) { o.MaxConnsPerHost = n } }
func WithIdleConnTimeout(d time.Duration) Option {
	return func(o *Options) { o.IdleConnTimeout = d }
}
func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(o *Options) { o.ResponseHeaderTimeout = d }
}
func WithClientTimeout(d time.Duration) Option { return func(o *Options) { o.ClientTimeout = d } }
func WithDisableKeepAlives(v bool) Option      { return func(o *Options) { o.DisableKeepAlives = v } }
func WithDisableCompression(v bool) Option     { return func(o *Options) { o.DisableCompression = v } }
func WithInsecureSkipVerify(v bool) Option     { return func(o *Options) { o.InsecureSkipVerify = v } }
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *Options) { o.RoundTripper = rt }
}

func defaults() Options {
	return Options{
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		MaxConnsPerHost:       DefaultMaxConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ExpectContinueTimeout: DefaultExpectContinueTimeout,
		ClientTimeout:         DefaultClientTimeout,
	}
}

// New builds an *http.Client with the pooled transport settings a
// fortified session keeps for its lifetime. The returned client has no
// retry policy of its own: Do performs exactly one attempt and lets
// whatever error the transport raises escape verbatim for the engine to
// classify.
func New(opts ...Option) *http.Client {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}

	rt := o.RoundTripper
	if rt == nil {
		rt = &http.Transport{
			MaxIdleConns:          o.MaxIdleConns,
			MaxIdleConnsPerHost:   o.MaxIdleConnsPerHost,
			MaxConnsPerHost:       o.MaxConnsPerHost,
			IdleConnTimeout:       o.IdleConnTimeout,
			ResponseHeaderTimeout: o.ResponseHeaderTimeout,
			TLSHandshakeTimeout:   o.TLSHandshakeTimeout,
			ExpectContinueTimeout: o.ExpectContinueTimeout,
			DisableKeepAlives:     o.DisableKeepAlives,
			DisableCompression:    o.DisableCompression,
			ForceAttemptHTTP2:     true,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: o.InsecureSkipVerify}, //nolint:gosec
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   o.ClientTimeout,
		// Redirects are counted by the engine's classifier via
		// http.Client's default CheckRedirect (10 hops); a custom
		// policy isn't needed because net/url.Error already reports
		// "stopped after N redirects" in a shape classify.go matches.
	}
}

// Do performs a single, unpolicied attempt: no retry, no classification.
// pkg/engine does not call it; the engine calls client.Do itself once per
// attempt and applies pkg/retry's Policy and classification on the result.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	return client.Do(req)
}
