// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/aria-tui/internal/client"
)

// maxStdinQuery bounds a question read from a pipe.
const maxStdinQuery = 1 << 20

var errNoQuestion = errors.New("no question given")

func (a *app) newAskCommand() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question and print the reply",
		Long: `Sends one question to the chat backend and prints the reply.

The words of the question are joined with spaces. With no arguments the
question is read from standard input.

Examples:
  aria ask "What is a goroutine?"
  echo "Explain DNS" | aria ask
  aria ask --markdown "Show me a Go HTTP server"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := a.readQuery(args)
			if err != nil {
				return err
			}
			return a.ask(cmd, query, markdown)
		},
	}
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "render the reply as markdown when writing to a terminal")
	return cmd
}

// readQuery joins args, or reads standard input when there are none.
func (a *app) readQuery(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if isTerminal(a.in) {
		return "", errNoQuestion
	}
	data, err := io.ReadAll(io.LimitReader(a.in, maxStdinQuery))
	if err != nil {
		return "", fmt.Errorf("failed to read question: %w", err)
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", errNoQuestion
	}
	return query, nil
}

func (a *app) ask(cmd *cobra.Command, query string, markdown bool) error {
	c := a.newClient()
	reply, err := c.Ask(cmd.Context(), query)
	if err != nil {
		fmt.Fprintln(a.errOut, errorStyle.Render("Error:"), client.ErrorText(err))
		return &exitError{code: 1}
	}
	displayReply(a.out, reply, markdown)
	return nil
}

// newClient builds the /chat client from the loaded config.
func (a *app) newClient() *client.Client {
	return client.New(a.cfg.API.BaseURL).
		WithTimeout(a.cfg.API.Timeout()).
		WithLogger(a.logger)
}
