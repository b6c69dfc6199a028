// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aria-tui/internal/config"
	"github.com/jeranaias/aria-tui/internal/model"
	"github.com/jeranaias/aria-tui/internal/storage"
)

// NoticeDuration is how long a status notice stays visible.
const NoticeDuration = 3 * time.Second

// RecentLimit is how many archived conversations the sidebar asks for.
const RecentLimit = 8

// Asker sends one query and returns the reply text. *client.Client
// satisfies it.
type Asker interface {
	Ask(ctx context.Context, query string) (string, error)
}

// Archive stores cleared conversations. *storage.ConversationStore
// satisfies it.
type Archive interface {
	Save(conv *storage.StoredConversation) (string, error)
	Recent(n int) ([]storage.ConversationMeta, error)
}

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// askCmd runs the query on a goroutine and settles it with a ReplyMsg.
// The request is never cancelled; the client's own timeout bounds it.
func askCmd(asker Asker, query string) tea.Cmd {
	return func() tea.Msg {
		text, err := asker.Ask(context.Background(), query)
		return ReplyMsg{Query: query, Text: text, Err: err}
	}
}

// archiveCmd saves a cleared conversation.
func archiveCmd(store Archive, messages []model.Message) tea.Cmd {
	return func() tea.Msg {
		id, err := store.Save(storage.FromMessages(messages))
		return ArchivedMsg{ID: id, Err: err}
	}
}

// loadRecentCmd reads the sidebar's recent list.
func loadRecentCmd(store Archive) tea.Cmd {
	return func() tea.Msg {
		metas, err := store.Recent(RecentLimit)
		titles := make([]string, len(metas))
		for i, meta := range metas {
			titles[i] = meta.Summary
		}
		return RecentLoadedMsg{Titles: titles, Err: err}
	}
}

// copyCmd writes code to the clipboard.
func copyCmd(block int, code string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Block: block, Err: clipboardWrite(code)}
	}
}

// watchConfigCmd waits for the next config update. It returns nil once the
// watcher is closed.
func watchConfigCmd(w *config.Watcher) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-w.Updates()
		if !ok {
			return nil
		}
		return ConfigReloadedMsg{Config: u.Config, Err: u.Err}
	}
}

// expireNoticeCmd hides notice seq after NoticeDuration.
func expireNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
