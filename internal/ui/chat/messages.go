// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/aria-tui/internal/config"
)

// ReplyMsg settles the in-flight query. Exactly one of Text and Err is
// meaningful.
type ReplyMsg struct {
	Query string
	Text  string
	Err   error
}

// ConfigReloadedMsg carries a config file change.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// RecentLoadedMsg carries the titles of the newest archived conversations.
type RecentLoadedMsg struct {
	Titles []string
	Err    error
}

// ArchivedMsg reports the result of archiving a cleared conversation.
type ArchivedMsg struct {
	ID  string
	Err error
}

// CopiedMsg reports a clipboard copy of code block Block (1-based).
type CopiedMsg struct {
	Block int
	Err   error
}

// noticeExpiredMsg hides the status notice with the given sequence number.
type noticeExpiredMsg struct {
	seq int
}
