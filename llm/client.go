package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/llmaid/config"
	"github.com/kbukum/llmaid/errors"
	"github.com/kbukum/llmaid/httpclient"
	"github.com/kbukum/llmaid/logger"
	"github.com/kbukum/llmaid/observability"
	"github.com/kbukum/llmaid/template"
	"github.com/kbukum/llmaid/version"
)

// Client sends completion requests. A Client is safe for concurrent use;
// configuration is resolved afresh on every call.
type Client struct {
	overrides config.Overrides
	env       config.EnvReader
	defaults  config.Defaults
	tmpl      *string

	transport  Transport
	httpConfig httpclient.Config
	path       string

	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.Metrics
	newID   func() string
}

// New creates a Client. Settings are not validated here: a client with no
// base URL, secret or model is valid until a call needs them.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		env:      config.OSEnv,
		defaults: config.DefaultDefaults(),
		path:     DefaultCompletionPath,
		log:      logger.Nop(),
		tracer:   otel.Tracer(observability.InstrumentationName),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		cfg := c.httpConfig
		cfg.BaseURL = ""
		cfg.Auth = nil
		if cfg.UserAgent == "" {
			cfg.UserAgent = version.UserAgent()
		}
		hc, err := httpclient.New(cfg)
		if err != nil {
			return nil, err
		}
		c.transport = hc
	}
	return c, nil
}

// PromptTemplate returns a copy of the client bound to tmpl. The receiver
// is not modified.
func (c *Client) PromptTemplate(tmpl string) *Client {
	clone := *c
	clone.tmpl = &tmpl
	return &clone
}

// Template returns the bound template, if any.
func (c *Client) Template() (string, bool) {
	if c.tmpl == nil {
		return "", false
	}
	return *c.tmpl, true
}

// Settings resolves the effective settings for a call with opts, without
// sending anything.
func (c *Client) Settings(opts ...CallOption) (config.Settings, error) {
	co := newCallOptions(opts)
	return config.Resolve(c.defaults, c.env, c.overrides, co.overrides)
}

// Request returns the request a call with prompt and opts would send. It
// performs resolution and rendering only.
func (c *Client) Request(prompt string, opts ...CallOption) (*PreparedRequest, error) {
	return c.prepare(prompt, opts, false)
}

// prepare is shared by every call shape: resolve, render, build.
func (c *Client) prepare(prompt string, opts []CallOption, stream bool) (*PreparedRequest, error) {
	co := newCallOptions(opts)
	s, err := config.Resolve(c.defaults, c.env, c.overrides, co.overrides)
	if err != nil {
		return nil, err
	}

	text, err := c.render(prompt, co.vars, s.StrictTemplate)
	if err != nil {
		return nil, err
	}
	return newPreparedRequest(s, c.path, c.newID(), text, stream), nil
}

// render produces the final prompt. The bound template is rendered and the
// call prompt, when given, follows on a new line. Without a template the
// prompt is sent as is.
func (c *Client) render(prompt string, vars map[string]string, strict bool) (string, error) {
	if c.tmpl == nil {
		if prompt == "" {
			return "", errors.New(errors.KindTemplate, "empty prompt and no template bound")
		}
		return prompt, nil
	}

	text, err := template.Render(*c.tmpl, vars, strict)
	if err != nil {
		return "", err
	}
	if prompt != "" {
		text += "\n" + prompt
	}
	return text, nil
}

// Completion sends prompt and returns the text of the first choice.
func (c *Client) Completion(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	return c.complete(ctx, observability.SpanCompletion, observability.ModeSync, prompt, opts)
}

// ACompletion runs Completion in a goroutine. Exactly one Result is sent on
// the returned channel, which is then closed.
func (c *Client) ACompletion(ctx context.Context, prompt string, opts ...CallOption) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		text, err := c.complete(ctx, observability.SpanACompletion, observability.ModeAsync, prompt, opts)
		ch <- Result{Text: text, Err: err}
	}()
	return ch
}

// Await waits for the result of ACompletion or for ctx to be done.
func Await(ctx context.Context, ch <-chan Result) (string, error) {
	select {
	case r, ok := <-ch:
		if !ok {
			return "", errors.New(errors.KindProvider, "result channel closed without a result")
		}
		return r.Text, r.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) complete(ctx context.Context, spanName, mode, prompt string, opts []CallOption) (string, error) {
	req, err := c.prepare(prompt, opts, false)
	if err != nil {
		c.preflightFailed(ctx, mode, err)
		return "", err
	}

	ctx, call := observability.StartCall(ctx, c.tracer, c.metrics, spanName, mode, req.RequestID, req.Settings.Model)
	log := c.callLogger(req, mode)
	log.Debug("completion request", logger.Fields("prompt_chars", len(req.Body.Prompt)))

	text, err := c.send(ctx, req)
	call.End(err)
	if err != nil {
		log.Warn("completion failed", logger.ErrorFields("completion", err))
		return "", err
	}
	log.Debug("completion finished",
		logger.DurationFields("completion", call.Duration()),
		logger.Fields(logger.FieldChars, len(text)))
	return text, nil
}

func (c *Client) send(ctx context.Context, req *PreparedRequest) (string, error) {
	resp, err := c.transport.Do(ctx, req.httpRequest())
	if err != nil {
		return "", translateError(err)
	}
	return parseCompletion(resp.Body)
}

// parseCompletion extracts choices[0].text.
func parseCompletion(body []byte) (string, error) {
	var resp CompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Provider("malformed completion response", truncate(body), err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Provider("completion response has no choices", truncate(body), nil)
	}
	return resp.Choices[0].Text, nil
}

// translateError maps transport failures onto the llmaid taxonomy.
func translateError(err error) error {
	if ctxErr := contextError(err); ctxErr != nil {
		return errors.Provider("request canceled", "", ctxErr)
	}
	if herr, ok := httpclient.AsError(err); ok && herr.IsStatus() {
		return errors.ProviderHTTP(herr.StatusCode, herr.Body).WithCause(herr)
	}
	perr := errors.Provider("transport failed", "", err)
	if code := httpclient.CodeOf(err); code != "" {
		perr = perr.WithDetail("transport", string(code))
	}
	return perr
}

// contextError returns the context error wrapped in err, if any.
func contextError(err error) error {
	for _, target := range []error{context.Canceled, context.DeadlineExceeded} {
		if stderrors.Is(err, target) {
			return target
		}
	}
	return nil
}

// preflightFailed records a call that failed before any I/O.
func (c *Client) preflightFailed(ctx context.Context, mode string, err error) {
	kind := observability.ErrorKind(err)
	c.metrics.RecordError(ctx, mode, kind)
	c.log.Debug("call rejected before sending", logger.Fields(
		logger.FieldMode, mode,
		logger.FieldErrorKind, kind,
		logger.FieldError, err.Error(),
	))
}

func (c *Client) callLogger(req *PreparedRequest, mode string) *logger.Logger {
	s := req.Settings
	fields := logger.Fields(
		logger.FieldRequestID, req.RequestID,
		logger.FieldMode, mode,
		logger.FieldModel, s.Model,
		logger.FieldBaseURL, s.BaseURL,
		logger.FieldSecret, s.MaskedSecret(),
	)
	if s.ContextLength != nil {
		fields["context_length"] = *s.ContextLength
	}
	return c.log.WithFields(fields)
}

// maxRawBody bounds raw payloads copied into errors.
const maxRawBody = 512

func truncate(b []byte) string {
	if len(b) > maxRawBody {
		return string(b[:maxRawBody]) + "..."
	}
	return string(b)
}
