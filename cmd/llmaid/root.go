package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"github.com/kbukum/llmaid/config"
	"github.com/kbukum/llmaid/httpclient"
	"github.com/kbukum/llmaid/llm"
	"github.com/kbukum/llmaid/logger"
	"github.com/kbukum/llmaid/observability"
	"github.com/kbukum/llmaid/version"
)

const appName = "llmaid"

// options holds the flags shared by every command.
type options struct {
	configFile   string
	envFile      string
	verbose      bool
	timeout      time.Duration
	otlpEndpoint string

	baseURL          string
	secret           string
	model            string
	temperature      float64
	maxTokens        int
	contextLength    int
	topP             float64
	frequencyPenalty float64
	presencePenalty  float64
	promptDir        string
	lenient          bool

	flags *pflag.FlagSet
}

func newRootCmd() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "llmaid - completions from any OpenAI-compatible backend",
		Long: `llmaid sends text completion requests to OpenAI-compatible backends.

Settings come from flags, then llmaid.yml, then LLMAID_* environment
variables (a .env file is loaded when present).

  llmaid complete "Say hello"                                Send one prompt
  llmaid stream "Count to five"                              Stream tokens as they arrive
  llmaid render --template "Hi {{name}}" --var name=Ada      Print the rendered prompt
  llmaid check --mock                                        Run the integration checks`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "config file (default: search for llmaid.yml)")
	f.StringVar(&opts.envFile, "env-file", "", ".env file (default: search for .env)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	f.DurationVar(&opts.timeout, "timeout", 60*time.Second, "request timeout for non-streaming calls")
	f.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "export traces and metrics to this OTLP HTTP endpoint (host:port)")

	f.StringVar(&opts.baseURL, "base-url", "", "backend base URL ("+config.EnvBaseURL+")")
	f.StringVar(&opts.secret, "secret", "", "API secret ("+config.EnvSecret+")")
	f.StringVarP(&opts.model, "model", "m", "", "model name ("+config.EnvModel+")")
	f.Float64Var(&opts.temperature, "temperature", 0, "sampling temperature")
	f.IntVar(&opts.maxTokens, "max-tokens", 0, "maximum tokens to generate")
	f.IntVar(&opts.contextLength, "context-length", 0, "context length of the model")
	f.Float64Var(&opts.topP, "top-p", 0, "nucleus sampling")
	f.Float64Var(&opts.frequencyPenalty, "frequency-penalty", 0, "frequency penalty")
	f.Float64Var(&opts.presencePenalty, "presence-penalty", 0, "presence penalty")
	f.StringVar(&opts.promptDir, "prompt-dir", "", "directory for --prompt-file ("+config.EnvPromptDir+")")
	f.BoolVar(&opts.lenient, "lenient", false, "leave unbound placeholders in place instead of failing")
	opts.flags = f

	cmd.AddCommand(
		newCompleteCmd(opts),
		newStreamCmd(opts),
		newRenderCmd(opts),
		newCheckCmd(opts),
	)
	return cmd
}

// overrides turns the flags that were set into a call layer.
func (o *options) overrides() config.Overrides {
	var ov config.Overrides
	changed := func(name string) bool {
		fl := o.flags.Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("base-url") {
		ov.BaseURL = &o.baseURL
	}
	if changed("secret") {
		ov.Secret = &o.secret
	}
	if changed("model") {
		ov.Model = &o.model
	}
	if changed("temperature") {
		ov.Temperature = &o.temperature
	}
	if changed("max-tokens") {
		ov.MaxTokens = &o.maxTokens
	}
	if changed("context-length") {
		ov.ContextLength = &o.contextLength
	}
	if changed("top-p") {
		ov.TopP = &o.topP
	}
	if changed("frequency-penalty") {
		ov.FrequencyPenalty = &o.frequencyPenalty
	}
	if changed("presence-penalty") {
		ov.PresencePenalty = &o.presencePenalty
	}
	if changed("prompt-dir") {
		ov.PromptDir = &o.promptDir
	}
	if changed("lenient") {
		strict := !o.lenient
		ov.StrictTemplate = &strict
	}
	return ov
}

func (o *options) logger() *logger.Logger {
	log := logger.NewFromEnv(appName)
	if o.verbose {
		cfg := &logger.Config{Level: "debug"}
		cfg.ApplyDefaults()
		log = logger.New(cfg, appName)
	}
	return log
}

// app is what a command needs to talk to a backend.
type app struct {
	client   *llm.Client
	log      *logger.Logger
	shutdown func(context.Context)
}

// newApp loads file overrides, sets up logging and telemetry, and builds
// the client. Flags are merged into the instance layer.
func (o *options) newApp(ctx context.Context, extra ...llm.Option) (*app, error) {
	log := o.logger()

	loaderOpts := []config.LoaderOption{}
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}
	fileOverrides, err := config.LoadOverrides(appName, loaderOpts...)
	if err != nil {
		return nil, err
	}

	a := &app{log: log, shutdown: func(context.Context) {}}
	clientOpts := []llm.Option{
		llm.WithOverrides(fileOverrides.Merge(o.overrides())),
		llm.WithLogger(log),
		llm.WithHTTPConfig(httpclient.Config{Timeout: o.timeout}),
	}

	if o.otlpEndpoint != "" {
		metrics, shutdown, err := initTelemetry(ctx, o.otlpEndpoint, log)
		if err != nil {
			return nil, err
		}
		a.shutdown = shutdown
		clientOpts = append(clientOpts,
			llm.WithTracer(otel.Tracer(observability.InstrumentationName)),
			llm.WithMetrics(metrics),
		)
	}

	client, err := llm.New(append(clientOpts, extra...)...)
	if err != nil {
		a.shutdown(ctx)
		return nil, err
	}
	a.client = client
	return a, nil
}

// initTelemetry installs OTLP trace and metric providers.
func initTelemetry(ctx context.Context, endpoint string, log *logger.Logger) (*observability.Metrics, func(context.Context), error) {
	tcfg := observability.DefaultTracerConfig(appName)
	tcfg.Endpoint = endpoint
	tcfg.ServiceVersion = version.Get().Short()
	tcfg.Log = log
	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init tracer: %w", err)
	}

	mcfg := observability.DefaultMeterConfig(appName)
	mcfg.Endpoint = endpoint
	mcfg.ServiceVersion = tcfg.ServiceVersion
	mcfg.Log = log
	mp, err := observability.InitMeter(ctx, mcfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown failed", logger.ErrorFields("shutdown", err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			log.Warn("meter shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
	return metrics, shutdown, nil
}
