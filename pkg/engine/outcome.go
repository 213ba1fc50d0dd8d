package engine

import (
	"net/http"

	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

// action is the internal tagged union spec.md §3's AttemptOutcome
// collapses into, once a retry.Policy has been consulted: accept the
// response, retry the attempt, or fail the whole call.
type action int

const (
	actionAccept action = iota
	actionRetry
	actionFatal
)

// outcome is the result of classifying a single attempt.
type outcome struct {
	action action
	resp   *http.Response
	err    error
}

// classifyAttempt implements the table in §4.6: a response is ACCEPTed
// unless ShouldRetryOnResponse says otherwise — note a response-retry
// candidate keeps retrying even on what turns out to be the last
// attempt, there is no forced-accept row for responses in the table, so
// the outer loop's own exhaustion step (no ACCEPT ever happened) is what
// eventually raises RETRY_EXHAUSTED; a transport error in the policy's
// retryable set is retried while tries remain and otherwise fatal
// immediately; a library-raised *ferrors.Error retries only when
// ShouldRetryOnException opts in, otherwise propagates unchanged; any
// other error follows the same predicate, falling back to a fatal,
// untranslated error for the caller to wrap.
func classifyAttempt(err error, resp *http.Response, label string, triesLeft int, policy retry.Policy) outcome {
	if err == nil {
		if policy.ShouldRetryOnResponse != nil && policy.ShouldRetryOnResponse(resp) {
			return outcome{action: actionRetry, resp: resp}
		}
		return outcome{action: actionAccept, resp: resp}
	}

	if policy.TransportRetryable != nil && policy.TransportRetryable(err) {
		if triesLeft > 0 {
			return outcome{action: actionRetry, err: err}
		}
		return outcome{action: actionFatal, err: err}
	}

	if policy.ShouldRetryOnException != nil && policy.ShouldRetryOnException(err, label) && triesLeft > 0 {
		return outcome{action: actionRetry, err: err}
	}

	return outcome{action: actionFatal, err: err}
}
