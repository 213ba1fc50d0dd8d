package fortifiedhttp

import (
	"net/url"

	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

// requestState is the mutable RequestSpec/Config/Policy triple a call's
// RequestOptions act on before Client.Do hands it to the engine.
type requestState struct {
	spec   engine.RequestSpec
	retry  retry.Config
	policy retry.Policy
}

// RequestOption configures a single call, overriding whatever the
// Client's ClientOptions set as the default.
type RequestOption func(*requestState)

// WithHeader sets a single request header, overwriting any previous
// value for the same key on this call.
func WithHeader(key, value string) RequestOption {
	return func(s *requestState) {
		if s.spec.Header == nil {
			s.spec.Header = map[string]string{}
		}
		s.spec.Header[key] = value
	}
}

// WithQuery adds a query parameter, preserving repeats for the same key.
func WithQuery(key, value string) RequestOption {
	return func(s *requestState) {
		if s.spec.Query == nil {
			s.spec.Query = url.Values{}
		}
		s.spec.Query.Add(key, value)
	}
}

// WithJSONBody marshals v as the request body with a JSON content type,
// per RequestSpec's "first non-nil of Body/JSONBody/FormBody wins" rule —
// set this only when the call's body argument is nil.
func WithJSONBody(v any) RequestOption {
	return func(s *requestState) { s.spec.JSONBody = v }
}

// WithFormBody sets the request body as a urlencoded form, per the same
// mutual-exclusion rule as WithJSONBody.
func WithFormBody(form map[string]string) RequestOption {
	return func(s *requestState) { s.spec.FormBody = form }
}

// WithBasicAuth attaches HTTP Basic credentials.
func WithBasicAuth(username, password string) RequestOption {
	return func(s *requestState) { s.spec.Auth = engine.BasicAuth{Username: username, Password: password} }
}

// WithCookies attaches a pre-established cookie set.
func WithCookies(cookies map[string]string) RequestOption {
	return func(s *requestState) { s.spec.Auth = engine.CookieAuth{Cookies: cookies} }
}

// WithAllowRedirects sets RequestSpec.AllowRedirects.
func WithAllowRedirects(allow bool) RequestOption {
	return func(s *requestState) { s.spec.AllowRedirects = allow }
}

// WithRequestLabel overrides the Client's default label for this call's
// attempt logs and its retry.Policy.ShouldRetryOnException calls.
func WithRequestLabel(label string) RequestOption {
	return func(s *requestState) { s.spec.Label = label }
}

// WithRetry overrides the Client's default retry.Config for this call.
func WithRetry(cfg retry.Config) RequestOption {
	return func(s *requestState) { s.retry = cfg }
}

// WithPolicy overrides the Client's default retry.Policy for this call.
func WithPolicy(policy retry.Policy) RequestOption {
	return func(s *requestState) { s.policy = policy }
}
