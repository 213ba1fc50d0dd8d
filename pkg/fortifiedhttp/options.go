package fortifiedhttp

import (
	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/observability"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
	"github.com/fortified-go/fortifiedhttp/pkg/transport"
)

// config accumulates ClientOption settings before New builds the
// transport, engine and stored defaults from it.
type config struct {
	transportOpts []transport.Option
	logger        observability.Logger
	sink          engine.Sink
	engineOpts    []engine.Option
	retryConfig   retry.Config
	policy        retry.Policy
}

// ClientOption configures a Client at construction time.
type ClientOption func(*config)

// WithTransportOptions forwards pkg/transport.Option values to the
// pooled *http.Client the Client is built on.
func WithTransportOptions(opts ...transport.Option) ClientOption {
	return func(c *config) { c.transportOpts = append(c.transportOpts, opts...) }
}

// WithLogger overrides the default no-op Logger.
func WithLogger(logger observability.Logger) ClientOption {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSink overrides the engine's default MemorySink, e.g. to share one
// Sink across multiple Clients.
func WithSink(sink engine.Sink) ClientOption {
	return func(c *config) { c.sink = sink }
}

// WithDefaultLabel sets the label used in attempt logs and passed to
// retry.Policy.ShouldRetryOnException for calls that don't set
// RequestSpec.Label themselves.
func WithDefaultLabel(label string) ClientOption {
	return func(c *config) { c.engineOpts = append(c.engineOpts, engine.WithLabel(label)) }
}

// WithDefaultRetryConfig overrides retry.DefaultConfig() as the Client's
// baseline, applied to every call unless WithRetry overrides it per call.
func WithDefaultRetryConfig(cfg retry.Config) ClientOption {
	return func(c *config) { c.retryConfig = cfg }
}

// WithDefaultPolicy overrides retry.DefaultPolicy() as the Client's
// baseline, applied to every call unless WithPolicy overrides it per call.
func WithDefaultPolicy(policy retry.Policy) ClientOption {
	return func(c *config) { c.policy = policy }
}
