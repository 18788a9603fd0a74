package llm

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/llmaid/config"
	"github.com/kbukum/llmaid/httpclient"
	"github.com/kbukum/llmaid/logger"
	"github.com/kbukum/llmaid/observability"
	"github.com/kbukum/llmaid/util"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the provider base URL, e.g. "https://api.openai.com/v1".
func WithBaseURL(url string) Option {
	return func(c *Client) { c.overrides.BaseURL = &url }
}

// WithSecret sets the bearer token.
func WithSecret(secret string) Option {
	return func(c *Client) { c.overrides.Secret = &secret }
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.overrides.Model = &model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(v float64) Option {
	return func(c *Client) { c.overrides.Temperature = &v }
}

// WithMaxTokens sets the completion length limit.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.overrides.MaxTokens = &n }
}

// WithContextLength sets the context length. It is resolved and logged but
// not sent to the provider.
func WithContextLength(n int) Option {
	return func(c *Client) { c.overrides.ContextLength = &n }
}

// WithTopP sets nucleus sampling.
func WithTopP(v float64) Option {
	return func(c *Client) { c.overrides.TopP = &v }
}

// WithFrequencyPenalty sets the frequency penalty.
func WithFrequencyPenalty(v float64) Option {
	return func(c *Client) { c.overrides.FrequencyPenalty = &v }
}

// WithPresencePenalty sets the presence penalty.
func WithPresencePenalty(v float64) Option {
	return func(c *Client) { c.overrides.PresencePenalty = &v }
}

// WithStrictTemplate controls whether unbound placeholders fail rendering.
func WithStrictTemplate(strict bool) Option {
	return func(c *Client) { c.overrides.StrictTemplate = &strict }
}

// WithPromptDir sets the directory PromptFile reads from.
func WithPromptDir(dir string) Option {
	return func(c *Client) { c.overrides.PromptDir = &dir }
}

// WithOverrides merges o over the client's instance layer, typically the
// result of config.LoadOverrides.
func WithOverrides(o config.Overrides) Option {
	return func(c *Client) { c.overrides = c.overrides.Merge(o) }
}

// WithEnv replaces the environment layer. Pass config.NoEnv to ignore the
// process environment.
func WithEnv(env config.EnvReader) Option {
	return func(c *Client) { c.env = env }
}

// WithDefaults replaces the built-in defaults layer.
func WithDefaults(d config.Defaults) Option {
	return func(c *Client) { c.defaults = d }
}

// WithTransport sets the HTTP transport. It takes precedence over
// WithHTTPConfig.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithHTTPConfig configures the default transport (timeout, extra headers,
// round tripper). BaseURL and Auth are ignored; both come from the resolved
// settings of each call.
func WithHTTPConfig(cfg httpclient.Config) Option {
	return func(c *Client) { c.httpConfig = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.WithComponent("llm")
		}
	}
}

// WithTracer sets the tracer used for call spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMetrics enables call metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCompletionPath changes the endpoint path (default "/completions").
func WithCompletionPath(path string) Option {
	return func(c *Client) { c.path = path }
}

// WithRequestIDFunc replaces the request ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// CallOption adjusts a single call. Config setters form the call layer,
// which beats every other layer.
type CallOption func(*callOptions)

type callOptions struct {
	vars      map[string]string
	overrides config.Overrides
}

func newCallOptions(opts []CallOption) callOptions {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// Vars binds template placeholders. Later bindings win.
func Vars(vars map[string]string) CallOption {
	return func(co *callOptions) {
		for k, v := range vars {
			co.bind(k, v)
		}
	}
}

// Var binds one template placeholder.
func Var(name, value string) CallOption {
	return func(co *callOptions) { co.bind(name, value) }
}

func (co *callOptions) bind(name, value string) {
	if co.vars == nil {
		co.vars = make(map[string]string)
	}
	co.vars[name] = value
}

// Model sets the model for one call.
func Model(model string) CallOption {
	return func(co *callOptions) { co.overrides.Model = &model }
}

// BaseURL sets the provider base URL for one call.
func BaseURL(url string) CallOption {
	return func(co *callOptions) { co.overrides.BaseURL = &url }
}

// Secret sets the API key for one call.
func Secret(secret string) CallOption {
	return func(co *callOptions) { co.overrides.Secret = &secret }
}

// Temperature sets the sampling temperature for one call.
func Temperature(v float64) CallOption {
	return func(co *callOptions) { co.overrides.Temperature = util.Ptr(v) }
}

// MaxTokens caps the generated tokens for one call.
func MaxTokens(n int) CallOption {
	return func(co *callOptions) { co.overrides.MaxTokens = util.Ptr(n) }
}

// ContextLength sets the context length for one call. It is logged, not sent.
func ContextLength(n int) CallOption {
	return func(co *callOptions) { co.overrides.ContextLength = util.Ptr(n) }
}

// TopP sets nucleus sampling for one call.
func TopP(v float64) CallOption {
	return func(co *callOptions) { co.overrides.TopP = util.Ptr(v) }
}

// FrequencyPenalty sets the frequency penalty for one call.
func FrequencyPenalty(v float64) CallOption {
	return func(co *callOptions) { co.overrides.FrequencyPenalty = util.Ptr(v) }
}

// PresencePenalty sets the presence penalty for one call.
func PresencePenalty(v float64) CallOption {
	return func(co *callOptions) { co.overrides.PresencePenalty = util.Ptr(v) }
}

// Strict overrides template strictness for one call.
func Strict(strict bool) CallOption {
	return func(co *callOptions) { co.overrides.StrictTemplate = util.Ptr(strict) }
}
