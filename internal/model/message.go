// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/jeranaias/aria-tui/internal/util"
)

// ClockFormat is the layout used for the Time field of a message.
const ClockFormat = "15:04"

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Bot"
	default:
		return string(s)
	}
}

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages are values and are never modified after creation.
type Message struct {
	// Identity
	ID     int64  `json:"id"` // Unix milliseconds, strictly increasing per conversation
	Sender Sender `json:"sender"`

	// Content
	Text    string `json:"text"`
	IsError bool   `json:"is_error,omitempty"`

	// Time is the formatted clock string shown next to the bubble.
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message stamped with the given time.
func NewMessage(id int64, sender Sender, text string, at time.Time) Message {
	return Message{
		ID:        id,
		Sender:    sender,
		Text:      text,
		Time:      FormatClock(at),
		CreatedAt: at,
	}
}

// FormatClock formats t the way message timestamps are displayed.
func FormatClock(t time.Time) string {
	return t.Format(ClockFormat)
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot reports whether the message was written by the bot.
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}

// Preview returns a single-line, truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	content := strings.Join(strings.Fields(m.Text), " ")
	if maxLen <= 0 {
		return content
	}
	return util.TruncateRunes(content, maxLen)
}

// IsEmpty returns true if the message has no visible content.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Text) == ""
}
