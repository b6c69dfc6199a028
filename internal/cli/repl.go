// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aria-tui/internal/client"
	"github.com/jeranaias/aria-tui/internal/config"
	"github.com/jeranaias/aria-tui/internal/session"
	"github.com/jeranaias/aria-tui/internal/storage"
	"github.com/jeranaias/aria-tui/internal/ui/chat"
)

const replHelp = `Commands:
  /help, /h     Show this help
  /clear, /c    Archive and clear the conversation
  /recent       List recently archived conversations
  /quit, /q     Exit (also ctrl+d)`

func (a *app) newReplCommand() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Chat line by line with input history",
		Long: `Starts a line-based chat session without the full-screen UI.

Arrow keys walk through previous inputs; history is kept in
~/.aria/repl_history. Type /help for the session commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepl(cmd.Context(), markdown)
		},
	}
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", true, "render replies as markdown when writing to a terminal")
	return cmd
}

func (a *app) runRepl(ctx context.Context, markdown bool) error {
	r := &repl{
		session:  session.New(a.cfg.UI.Greeting),
		client:   a.newClient(),
		out:      a.out,
		botName:  a.cfg.UI.BotName,
		markdown: markdown,
		logger:   a.logger,
	}
	if store, err := a.openStore(); err != nil {
		a.logger.Warn("conversation archive unavailable", zap.Error(err))
	} else if store != nil {
		r.store = store
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyFile = filepath.Join(dir, "repl_history")
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer saveLineHistory(line, historyFile)

	fmt.Fprintln(r.out, botStyle.Render(r.botName+":"), r.session.Greeting())
	fmt.Fprintln(r.out, infoStyle.Render("Type /help for commands, /quit to exit."))

	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			// ctrl+c, ctrl+d and closed input all end the session.
			fmt.Fprintln(r.out)
			r.archive()
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !r.handle(ctx, input) {
			r.archive()
			return nil
		}
	}
}

func saveLineHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

// =============================================================================
// SESSION
// =============================================================================

// repl drives a session.Machine from input lines.
type repl struct {
	session  *session.Machine
	client   chat.Asker
	store    chat.Archive
	out      io.Writer
	botName  string
	markdown bool
	logger   *zap.Logger
}

// handle processes one input line and reports whether to keep going.
func (r *repl) handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "":
		return true
	case "/quit", "/q", "/exit", "exit", "quit":
		return false
	case "/help", "/h":
		fmt.Fprintln(r.out, replHelp)
		return true
	case "/clear", "/c":
		r.archive()
		r.session.Clear()
		fmt.Fprintln(r.out, successStyle.Render("Conversation cleared."))
		fmt.Fprintln(r.out, botStyle.Render(r.botName+":"), r.session.Greeting())
		return true
	case "/recent":
		r.printRecent()
		return true
	}

	if strings.HasPrefix(input, "/") {
		fmt.Fprintln(r.out, warningStyle.Render("Unknown command "+input+". Type /help."))
		return true
	}

	r.send(ctx, input)
	return true
}

// send runs one request to completion.
func (r *repl) send(ctx context.Context, input string) {
	query, err := r.session.Submit(input)
	if err != nil {
		return
	}

	reply, err := r.client.Ask(ctx, query)
	var settled session.Settlement
	if err != nil {
		settled = r.session.Fail(query, client.ErrorText(err))
	} else {
		settled = r.session.Succeed(query, reply)
	}

	fmt.Fprint(r.out, botStyle.Render(r.botName+":")+" ")
	if settled.Message.IsError {
		fmt.Fprintln(r.out, errorStyle.Render(settled.Message.Text))
		return
	}
	displayReply(r.out, settled.Message.Text, r.markdown)
}

// archive saves the conversation when the user said something.
func (r *repl) archive() {
	if r.store == nil || !r.session.HasUserMessages() {
		return
	}
	id, err := r.store.Save(storage.FromMessages(r.session.Snapshot()))
	if err != nil {
		r.logger.Warn("failed to archive conversation", zap.Error(err))
		return
	}
	r.logger.Debug("conversation archived", zap.String("id", id))
}

func (r *repl) printRecent() {
	if r.store == nil {
		fmt.Fprintln(r.out, infoStyle.Render("History is disabled."))
		return
	}
	metas, err := r.store.Recent(chat.RecentLimit)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("Error:"), err)
		return
	}
	if len(metas) == 0 {
		fmt.Fprintln(r.out, infoStyle.Render("No conversations yet."))
		return
	}
	fmt.Fprintln(r.out, strings.TrimRight(storage.FormatList(metas), "\n"))
}
