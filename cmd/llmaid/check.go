package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/llmaid/errors"
	"github.com/kbukum/llmaid/internal/mockbackend"
	"github.com/kbukum/llmaid/llm"
	"github.com/kbukum/llmaid/observability"
	"github.com/kbukum/llmaid/provider"
	"github.com/kbukum/llmaid/version"
)

// badModel is a model name no backend serves.
const badModel = "definitely-not-a-real-model-name-12345"

func newCheckCmd(opts *options) *cobra.Command {
	var (
		useMock bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the integration checks against a backend",
		Long: `Run basic, template, generation-parameter, multiple, error-handling,
async and streaming completions against the configured backend and report
PASS/FAIL for each.

  llmaid check --base-url https://api.openai.com/v1 --secret sk-... -m gpt-3.5-turbo-instruct
  llmaid check --mock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var extra []llm.Option
			if useMock {
				log := opts.logger()
				srv, err := mockbackend.New(mockbackend.Config{}, log)
				if err != nil {
					return err
				}
				if err := srv.Start(ctx); err != nil {
					return err
				}
				defer func() { _ = srv.Stop(context.WithoutCancel(ctx)) }()
				extra = append(extra,
					llm.WithBaseURL(srv.URL()),
					llm.WithSecret("mock-secret"),
					llm.WithModel(mockbackend.DefaultModel),
				)
			}

			a, err := opts.newApp(ctx, extra...)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			settings, err := a.client.Settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprintf(out, "Backend: %s\nSecret:  %s\nModel:   %s\n\n", settings.BaseURL, settings.MaskedSecret(), settings.Model)
			}

			report := runChecks(ctx, a.client, settings.BaseURL)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(out, report)
			}

			if _, failed := report.Summary(); failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useMock, "mock", false, "run against an in-process mock backend")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// runChecks runs every check in order.
func runChecks(ctx context.Context, client *llm.Client, service string) *observability.ServiceHealth {
	report := observability.NewServiceHealth(service, version.Get().Short())
	report.Run(ctx, checks(client)...)
	return report
}

func checks(client *llm.Client) []observability.HealthChecker {
	return []observability.HealthChecker{
		observability.CheckFunc{Name: "basic completion", Fn: func(ctx context.Context) (string, error) {
			return client.Completion(ctx, "Say hello in exactly 3 words.")
		}},
		observability.CheckFunc{Name: "template completion", Fn: func(ctx context.Context) (string, error) {
			tmpl := client.PromptTemplate("You are a {{role}}. Answer this question in exactly {{word_count}} words: {{question}}")
			return tmpl.Completion(ctx, "", llm.Vars(map[string]string{
				"role":       "helpful assistant",
				"word_count": "5",
				"question":   "What is the capital of France?",
			}))
		}},
		observability.CheckFunc{Name: "generation parameters", Fn: func(ctx context.Context) (string, error) {
			return client.Completion(ctx, "Explain quantum physics in simple terms.", llm.Temperature(0.1), llm.MaxTokens(30))
		}},
		observability.CheckFunc{Name: "multiple completions", Fn: func(ctx context.Context) (string, error) {
			prompts := []string{"What color is the sky?", "What is 10 * 10?", "Name one programming language."}
			for i, p := range prompts {
				if _, err := client.Completion(ctx, p); err != nil {
					return "", fmt.Errorf("request %d: %w", i+1, err)
				}
			}
			return fmt.Sprintf("%d requests", len(prompts)), nil
		}},
		observability.CheckFunc{Name: "error handling", Fn: func(ctx context.Context) (string, error) {
			text, err := client.Completion(ctx, "Hello world", llm.Model(badModel))
			switch {
			case err == nil:
				return "", fmt.Errorf("expected an error for model %q, got response %q", badModel, preview(text))
			case errors.IsProviderHTTP(err) || errors.IsProvider(err):
				return "rejected: " + err.Error(), nil
			default:
				return "", fmt.Errorf("unexpected error kind: %w", err)
			}
		}},
		observability.CheckFunc{Name: "async completion", Fn: func(ctx context.Context) (string, error) {
			return llm.Await(ctx, client.ACompletion(ctx, "What is 2+2? Answer with just the number."))
		}},
		observability.CheckFunc{Name: "streaming completion", Fn: func(ctx context.Context) (string, error) {
			stream, err := client.Stream(ctx, "Count from 1 to 3, each number on a new line.")
			if err != nil {
				return "", err
			}
			chunks, err := provider.Collect[string](ctx, stream)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d chunks: %s", len(chunks), strings.Join(chunks, "")), nil
		}},
	}
}

func printReport(w io.Writer, report *observability.ServiceHealth) {
	for _, c := range report.Components {
		mark := "PASS"
		if !c.Passed() {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "%s  %-22s %6s  %s\n", mark, c.Name, c.Duration.Round(time.Millisecond), preview(c.Message))
	}
	passed, failed := report.Summary()
	fmt.Fprintf(w, "\n%d passed, %d failed\n", passed, failed)
}

// preview shortens s for one-line display.
func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if len(s) > 100 {
		return s[:100] + "..."
	}
	return s
}
