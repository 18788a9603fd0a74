// mock-backend
//
// Serves a deterministic OpenAI-compatible /completions endpoint for local
// development and integration checks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kbukum/llmaid/internal/mockbackend"
	"github.com/kbukum/llmaid/logger"
	"github.com/kbukum/llmaid/version"
)

func main() {
	var cfg mockbackend.Config
	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Run the llmaid mock completions backend",
		Long: `Serve POST /completions with fixed answers.

  mock-backend --port 8089
  llmaid check --base-url http://127.0.0.1:8089 --secret x -m mock-model`,
		Version:      version.Get().String(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logger.NewFromEnv("mock-backend")
			if log.Enabled(zerolog.DebugLevel) {
				gin.SetMode(gin.DebugMode)
			}
			srv, err := mockbackend.New(cfg, log)
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving on %s\n", srv.URL())

			<-ctx.Done()
			return srv.Stop(context.WithoutCancel(ctx))
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Host, "host", "127.0.0.1", "listen host")
	f.IntVar(&cfg.Port, "port", 8089, "listen port (0 picks a free one)")
	f.StringVar(&cfg.Secret, "secret", "", "only accept this bearer token")
	f.StringSliceVar(&cfg.Models, "models", []string{mockbackend.DefaultModel}, "accepted model names")
	f.StringSliceVar(&cfg.Tokens, "tokens", mockbackend.FixtureTokens, "answer tokens")
	f.BoolVar(&cfg.Echo, "echo", false, "answer with the received prompt")
	f.DurationVar(&cfg.TokenDelay, "token-delay", 0, "delay between streamed tokens")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
