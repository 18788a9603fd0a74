package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/llmaid/httpclient"
	"github.com/kbukum/llmaid/llm"
)

// renderedRequest is the --request output. The secret is masked.
type renderedRequest struct {
	Method        string                `json:"method"`
	URL           string                `json:"url"`
	Headers       map[string]string     `json:"headers"`
	Body          llm.CompletionRequest `json:"body"`
	ContextLength *int                  `json:"context_length,omitempty"`
}

func newRenderCmd(opts *options) *cobra.Command {
	var (
		pf      promptFlags
		request bool
		stream  bool
	)
	cmd := &cobra.Command{
		Use:   "render [prompt...]",
		Short: "Print the prompt (or the full request) without sending it",
		Long: `Render the prompt exactly as it would be sent, without contacting the backend.

With --request the whole HTTP request is printed as JSON; this needs the
base URL, secret and model to be resolvable.

  llmaid render -t "Hi {{name}}" --var name=Ada
  llmaid render --request -m gpt-3.5-turbo-instruct "Say hello"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			client, err := pf.bind(a.client)
			if err != nil {
				return err
			}
			prompt := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if !request {
				// Only the prompt is needed, so placeholders are filled
				// without requiring connection settings.
				text, err := renderPrompt(client, prompt, pf.vars)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
				return nil
			}

			req, err := client.Request(prompt, pf.callOptions()...)
			if err != nil {
				return err
			}
			req.Body.Stream = stream
			rendered := renderedRequest{
				Method: req.Method,
				URL:    req.URL,
				Headers: map[string]string{
					httpclient.HeaderAuthorization: "Bearer " + req.Settings.MaskedSecret(),
					"Content-Type":                 "application/json",
					llm.HeaderRequestID:            req.RequestID,
				},
				Body:          req.Body,
				ContextLength: req.Settings.ContextLength,
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rendered)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&request, "request", false, "print the full request as JSON")
	cmd.Flags().BoolVar(&stream, "stream", false, "with --request, show the streaming variant")
	return cmd
}

// renderPrompt renders with placeholder connection settings so that only
// template errors can occur.
func renderPrompt(client *llm.Client, prompt string, vars map[string]string) (string, error) {
	req, err := client.Request(prompt,
		llm.Vars(vars),
		llm.BaseURL("http://render.invalid"),
		llm.Secret("-"),
		llm.Model("-"),
	)
	if err != nil {
		return "", err
	}
	return req.Body.Prompt, nil
}
