// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aria-tui/internal/server"
	"github.com/jeranaias/aria-tui/internal/upstream"
)

func (a *app) newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference chat backend",
		Long: `Serves GET /chat?q=<text> by forwarding the text to an
OpenAI-compatible chat-completions API and returning the reply as plain text.

The upstream key is read from upstream.api_key or GROQ_API_KEY.

Examples:
  GROQ_API_KEY=... aria serve
  aria serve --addr 127.0.0.1:9000`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLogStderr: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			up := a.cfg.Upstream
			completer := upstream.NewClient(up.APIKey).
				WithBaseURL(up.BaseURL).
				WithModel(up.Model).
				WithTimeout(up.Timeout()).
				WithLogger(a.logger)
			if !completer.IsConfigured() {
				a.logger.Warn("no upstream API key; /chat will fail until GROQ_API_KEY is set")
			}

			opts := server.OptionsFromConfig(a.cfg.Server)
			if addr != "" {
				opts.Addr = addr
			}
			srv := server.New(opts, completer, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting chat backend",
				zap.String("addr", srv.Addr()),
				zap.String("model", completer.Model()),
				zap.String("api_key", completer.APIKeyMasked()),
			)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
