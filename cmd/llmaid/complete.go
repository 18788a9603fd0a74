package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/llmaid/llm"
	"github.com/kbukum/llmaid/provider"
)

// promptFlags selects the template and bindings of one call.
type promptFlags struct {
	template    string
	promptFiles []string
	vars        map[string]string
}

func (p *promptFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.template, "template", "t", "", "prompt template with {{name}} placeholders")
	f.StringSliceVarP(&p.promptFiles, "prompt-file", "f", nil, "template file(s) in the prompt dir, joined with newlines")
	f.StringToStringVar(&p.vars, "var", nil, "template variable as name=value (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("template", "prompt-file")
}

// bind returns the client bound to the selected template, if any.
func (p *promptFlags) bind(client *llm.Client) (*llm.Client, error) {
	switch {
	case len(p.promptFiles) > 0:
		return client.PromptFile(p.promptFiles...)
	case p.template != "":
		return client.PromptTemplate(p.template), nil
	default:
		return client, nil
	}
}

func (p *promptFlags) callOptions() []llm.CallOption {
	if len(p.vars) == 0 {
		return nil
	}
	return []llm.CallOption{llm.Vars(p.vars)}
}

func newCompleteCmd(opts *options) *cobra.Command {
	var pf promptFlags
	cmd := &cobra.Command{
		Use:   "complete [prompt...]",
		Short: "Send a prompt and print the completion",
		Long: `Send a prompt and print the completion.

With --template or --prompt-file the template is rendered with --var
bindings and the prompt arguments, if any, follow it on a new line.

  llmaid complete "Say hello in three words"
  llmaid complete -t "You are a {{role}}." --var role=tutor "What is 2+2?"`,
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
			text, err := client.Completion(ctx, strings.Join(args, " "), pf.callOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func newStreamCmd(opts *options) *cobra.Command {
	var pf promptFlags
	cmd := &cobra.Command{
		Use:   "stream [prompt...]",
		Short: "Send a prompt and print tokens as they arrive",
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
			stream, err := client.Stream(ctx, strings.Join(args, " "), pf.callOptions()...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = provider.ForEach[string](ctx, stream, func(tok string) error {
				_, err := fmt.Fprint(out, tok)
				return err
			})
			fmt.Fprintln(out)
			return err
		},
	}
	pf.register(cmd)
	return cmd
}
