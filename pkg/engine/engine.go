package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fortified-go/fortifiedhttp/pkg/curl"
	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
	"github.com/fortified-go/fortifiedhttp/pkg/observability"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLabel overrides the default label used in attempt logs and passed to
// retry.Policy.ShouldRetryOnException when a RequestSpec doesn't set its own.
func WithLabel(label string) Option {
	return func(e *Engine) { e.defaultLabel = label }
}

// Engine is the retry-execution state machine: it wraps an *http.Client
// (already configured by pkg/transport), a metrics Sink, and a Logger,
// and exposes Do as the single operation that runs the full attempt
// loop described in §4.6.
type Engine struct {
	client       *http.Client
	sink         Sink
	logger       observability.Logger
	defaultLabel string
}

// New builds an Engine. sink and logger may be nil, in which case a
// NewMemorySink() and a no-op logger are used respectively, matching the
// teacher's "zero runtime overhead by default" pattern.
func New(client *http.Client, sink Sink, logger observability.Logger, opts ...Option) *Engine {
	e := &Engine{client: client, sink: sink, logger: logger, defaultLabel: "fortifiedhttp"}
	if e.sink == nil {
		e.sink = NewMemorySink()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do executes spec against cfg/policy until an ACCEPT, a FATAL, or
// exhaustion, implementing §4.6's five-step state machine.
func (e *Engine) Do(ctx context.Context, spec RequestSpec, cfg retry.Config, policy retry.Policy) (*http.Response, error) {
	spec.Method = strings.ToUpper(spec.Method)
	if spec.Method == "" {
		spec.Method = http.MethodGet
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	label := spec.Label
	if label == "" {
		label = e.defaultLabel
	}

	tries := cfg.Tries
	attempt := 0
	var lastErr error

	deadline := time.Time{}
	if cfg.WallClockBudget > 0 {
		deadline = time.Now().Add(cfg.WallClockBudget)
	}

	for {
		attempt++
		if tries > 0 && attempt > tries {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		triesLeft := tries - attempt
		if tries < 0 {
			triesLeft = 1 // unbounded: always "tries remain" until the wall-clock budget trips
		}

		e.log(ctx, label+": Start", map[string]any{"attempt": attempt, "method": spec.Method, "url": spec.URL})
		start := time.Now()

		req, cancel, buildErr := e.buildRequest(ctx, spec, cfg.Timeout)
		var resp *http.Response
		var attemptErr error
		if buildErr != nil {
			attemptErr = buildErr
		} else {
			resp, attemptErr = e.client.Do(req)
		}
		switch {
		case cancel == nil:
			// no per-attempt deadline was set
		case attemptErr != nil:
			cancel()
		default:
			resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		}

		e.sink.Inc("api_request.count", 1)
		e.sink.AddSample("api_request.latency", time.Since(start).Seconds())

		curlCtx := e.curlContext(spec)

		out := classifyAttempt(attemptErr, resp, label, triesLeft, policy)
		switch out.action {
		case actionAccept:
			if statusErr := e.checkAcceptedStatus(out.resp, curlCtx); statusErr != nil {
				e.sink.Inc("api_request.failure", 1)
				return nil, statusErr
			}
			e.sink.Inc("api_request.success", 1)
			return out.resp, nil

		case actionFatal:
			e.sink.Inc("api_request.failure", 1)
			var fe *ferrors.Error
			if errors.As(out.err, &fe) {
				return nil, fe
			}
			return nil, classifyTransportError(out.err, curlCtx)

		case actionRetry:
			lastErr = out.err
			if out.resp != nil && out.resp.Body != nil {
				_ = out.resp.Body.Close()
			}
			delay := cfg.NextDelay(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, e.exhausted(spec, lastErr, e.curlContext(spec))
}

// exhausted builds the §4.6 step-5 error: the retry budget ran out
// without an ACCEPT.
func (e *Engine) exhausted(spec RequestSpec, lastErr error, curlCtx curlContext) error {
	opts := []ferrors.Option{ferrors.WithRequestCurl(curl.Reconstruct(curlCtx.toCurlRequest()))}
	if lastErr != nil {
		opts = append(opts, ferrors.WithCause(lastErr))
	}
	return ferrors.Module(ferrors.CodeRetryExhausted,
		"retry budget exhausted for "+spec.Method+" "+spec.URL, opts...)
}

// checkAcceptedStatus implements §4.6's post-ACCEPT status check: a
// non-2xx/3xx status on an otherwise accepted response still raises,
// split three ways by status bucket.
func (e *Engine) checkAcceptedStatus(resp *http.Response, curlCtx curlContext) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return nil
	}
	return classifyResponseStatus(resp, curlCtx)
}

func (e *Engine) log(ctx context.Context, msg string, fields map[string]any) {
	if e.logger == nil {
		return
	}
	kv := make([]observability.Field, 0, len(fields))
	for k, v := range fields {
		kv = append(kv, observability.Any(k, v))
	}
	e.logger.Debug(ctx, msg, kv...)
}

// buildRequest assembles an *http.Request from spec: method, URL with
// query parameters, body (Body/JSONBody/FormBody, first non-nil wins),
// headers, auth, and the default User-Agent when the caller hasn't set
// one.
func (e *Engine) buildRequest(ctx context.Context, spec RequestSpec, timeout time.Duration) (*http.Request, context.CancelFunc, error) {
	u, err := url.Parse(spec.URL)
	if err != nil {
		return nil, nil, ferrors.Value("invalid request URL", ferrors.WithCause(err))
	}
	if len(spec.Query) > 0 {
		q := u.Query()
		for k, vs := range spec.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	body, contentType, err := requestBody(spec)
	if err != nil {
		return nil, nil, err
	}

	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, u.String(), body)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, nil, ferrors.Module(ferrors.CodeRequest, "failed to build request", ferrors.WithCause(err))
	}

	for k, v := range spec.Header {
		req.Header.Set(k, v)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent())
	}

	applyAuth(req, spec.Auth)

	return req, cancel, nil
}

// cancelOnClose releases a per-attempt context.WithTimeout once the
// response body it wraps is closed, instead of leaving the timer to
// fire on its own after the body has long been drained.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

func requestBody(spec RequestSpec) (io.Reader, string, error) {
	switch {
	case spec.Body != nil:
		return spec.Body, "", nil
	case spec.JSONBody != nil:
		b, err := json.Marshal(spec.JSONBody)
		if err != nil {
			return nil, "", ferrors.Value("failed to encode JSON body", ferrors.WithCause(err))
		}
		return bytes.NewReader(b), HeaderContentTypeJSON, nil
	case len(spec.FormBody) > 0:
		form := url.Values{}
		for k, v := range spec.FormBody {
			form.Set(k, v)
		}
		return strings.NewReader(form.Encode()), HeaderContentTypeFormURLEncoded, nil
	default:
		return nil, "", nil
	}
}

func applyAuth(req *http.Request, auth Auth) {
	switch a := auth.(type) {
	case BasicAuth:
		req.SetBasicAuth(a.Username, a.Password)
	case CookieAuth:
		for k, v := range a.Cookies {
			req.AddCookie(&http.Cookie{Name: k, Value: v})
		}
	case CertAuth:
		// Client-cert auth is configured on the transport's TLS config,
		// not per-request; CertAuth on a RequestSpec is advisory context
		// for curl reconstruction only.
	}
}

// curlContext builds the diagnostic context attached to errors, from a
// RequestSpec alone (no live *http.Request needed).
func (e *Engine) curlContext(spec RequestSpec) curlContext {
	c := curlContext{
		method:         spec.Method,
		url:            spec.URL,
		query:          spec.Query,
		allowRedirects: spec.AllowRedirects,
	}
	if len(spec.Header) > 0 {
		h := http.Header{}
		for k, v := range spec.Header {
			h.Set(k, v)
		}
		c.header = h
	}
	switch a := spec.Auth.(type) {
	case BasicAuth:
		c.basicUser = a.Username
		c.basicPass = a.Password
	case CookieAuth:
		c.cookies = a.Cookies
	}
	return c
}
