// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/aria-tui/internal/export"
	"github.com/jeranaias/aria-tui/internal/storage"
)

// openStore opens the conversation archive, or returns nil when history is
// disabled.
func (a *app) openStore() (*storage.ConversationStore, error) {
	if !a.cfg.History.Enabled {
		return nil, nil
	}
	return a.openArchive()
}

// openArchive opens the archive directory regardless of history.enabled so
// existing conversations stay reachable.
func (a *app) openArchive() (*storage.ConversationStore, error) {
	dir, err := a.cfg.HistoryDir()
	if err != nil {
		return nil, err
	}
	return storage.NewConversationStore(dir, a.cfg.History.MaxConversations)
}

func (a *app) newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "Manage archived conversations",
		Long: `Conversations are archived when a chat is cleared with ctrl+n.

A conversation can be referred to by its list number, its ID or a unique
ID prefix.`,
	}
	cmd.AddCommand(
		a.newHistoryListCommand(),
		a.newHistoryShowCommand(),
		a.newHistoryExportCommand(),
		a.newHistoryDeleteCommand(),
		a.newHistoryClearCommand(),
	)
	return cmd
}

func (a *app) newHistoryListCommand() *cobra.Command {
	var (
		search string
		limit  int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List archived conversations, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openArchive()
			if err != nil {
				return err
			}

			var metas []storage.ConversationMeta
			switch {
			case search != "":
				metas, err = store.Search(search)
			case limit > 0:
				metas, err = store.Recent(limit)
			default:
				metas, err = store.List()
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, strings.TrimRight(storage.FormatList(metas), "\n"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show conversations containing this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many conversations")
	return cmd
}

func (a *app) newHistoryShowCommand() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Print an archived conversation as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openArchive()
			if err != nil {
				return err
			}
			conv, err := store.Find(args[0])
			if err != nil {
				return err
			}
			displayReply(a.out, conv.ExportMarkdown(a.cfg.UI.BotName), markdown)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "render the transcript when writing to a terminal")
	return cmd
}

func (a *app) newHistoryExportCommand() *cobra.Command {
	var (
		formatName   string
		outputDir    string
		noTimestamps bool
	)
	cmd := &cobra.Command{
		Use:   "export <ref>",
		Short: "Write an archived conversation to a Markdown, HTML or JSON file",
		Long: `Exports one conversation to a file named after its summary.

Examples:
  aria history export 1
  aria history export conv_3f2a --format html --out ~/Documents`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &export.Options{
				OutputDir:         outputDir,
				BotName:           a.cfg.UI.BotName,
				IncludeTimestamps: !noTimestamps,
				Theme:             a.cfg.UI.Theme,
			}
			exporter, err := export.ForFormat(formatName, opts)
			if err != nil {
				return err
			}

			store, err := a.openArchive()
			if err != nil {
				return err
			}
			conv, err := store.Find(args[0])
			if err != nil {
				return err
			}

			path, err := export.ExportToFile(conv, exporter, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Exported to "+path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", export.FormatMarkdown, "output format: "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&noTimestamps, "no-timestamps", false, "omit message times")
	return cmd
}

func (a *app) newHistoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete one archived conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openArchive()
			if err != nil {
				return err
			}
			conv, err := store.Find(args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(conv.ID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Deleted "+storage.ShortID(conv.ID)))
			return nil
		},
	}
}

func (a *app) newHistoryClearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every archived conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete history without --yes")
			}
			store, err := a.openArchive()
			if err != nil {
				return err
			}
			n, err := store.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Deleted %d conversation(s)", n)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
