package retry

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// Policy mirrors spec RetryPolicy: which transport-error kinds are always
// retry candidates, the HTTP retry-status set, and the two optional user
// predicates.
type Policy struct {
	// TransportRetryable reports whether a transport-level error (as
	// opposed to a FortifiedError already raised by this module) should
	// be retried. The default matches connect-timeout/read-timeout/
	// generic-timeout.
	TransportRetryable func(err error) bool

	// HTTPRetryStatuses is the HTTP retry-status set. Neither pkg/transport
	// nor pkg/engine reads it: a response with one of these statuses is
	// retried only if ShouldRetryOnResponse says so.
	HTTPRetryStatuses map[int]bool

	// ShouldRetryOnResponse, when set, is consulted for every ACCEPTed
	// response; returning true marks it a retry candidate instead.
	ShouldRetryOnResponse func(resp *http.Response) bool

	// ShouldRetryOnException, when set, is consulted for any exception
	// (FortifiedError or otherwise) that escapes an attempt.
	ShouldRetryOnException func(err error, label string) bool
}

// defaultHTTPRetryStatuses is §3's default HTTP retry status set.
func defaultHTTPRetryStatuses() map[int]bool {
	return map[int]bool{500: true, 502: true, 503: true, 504: true, 429: true}
}

// isTimeoutLike reports whether err is a context deadline, or a net.Error
// whose Timeout() is true — the Go shape of "connect-timeout / read-timeout
// / generic timeout" from §3's default transport-retry exception set.
func isTimeoutLike(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// DefaultPolicy returns the default policy: timeout-shaped transport
// errors are always retryable, {500,502,503,504,429} are the HTTP
// retry-status set, and no user predicates are set.
func DefaultPolicy() Policy {
	return Policy{
		TransportRetryable: isTimeoutLike,
		HTTPRetryStatuses:  defaultHTTPRetryStatuses(),
	}
}

// IdempotentPolicy additionally retries 5xx and 429 responses at the
// response level (via ShouldRetryOnResponse) and is
// meant for callers who only ever issue safe/idempotent methods (GET, HEAD,
// PUT, DELETE) — mirrors the idempotent-methods retry stance of a
// typical HTTP client's IdempotentNewRetryPolicy.
func IdempotentPolicy() Policy {
	p := DefaultPolicy()
	p.ShouldRetryOnResponse = func(resp *http.Response) bool {
		return resp != nil && (resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests)
	}
	return p
}

// NoRetryPolicy never retries anything — useful for non-idempotent
// POST/PUT callers.
func NoRetryPolicy() Policy {
	return Policy{
		TransportRetryable: func(error) bool { return false },
		HTTPRetryStatuses:  map[int]bool{},
	}
}

// DefaultExceptionPredicate ports mv_request_retry_excps_func: true when
// the error is a connection reset or a disconnect-shaped error. The
// original matches on substrings of the Python exception message
// (RemoteDisconnected / ConnectionResetError); the Go translation matches
// the equivalent typed error shapes plus a message-substring fallback so
// a vendored transport's custom error types still match.
func DefaultExceptionPredicate(err error, _ string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *os.SyscallError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNRESET) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "RemoteDisconnected") || strings.Contains(msg, "ConnectionResetError") ||
		strings.Contains(msg, "connection reset")
}
