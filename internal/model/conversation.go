// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"
)

// MaxMessages is the maximum number of messages to keep in conversation history.
// When exceeded, the oldest messages after the greeting are pruned.
const MaxMessages = 1000

// titleLength is the rune budget for Title.
const titleLength = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an append-only, ordered list of messages.
// It always starts with a bot greeting.
type Conversation struct {
	messages  []Message
	lastID    int64
	startedAt time.Time

	// now is overridable for tests.
	now func() time.Time
}

// NewConversation creates a conversation holding a single greeting message.
func NewConversation(greeting string) *Conversation {
	return NewConversationWithClock(greeting, time.Now)
}

// NewConversationWithClock is NewConversation with an injectable clock.
func NewConversationWithClock(greeting string, now func() time.Time) *Conversation {
	if now == nil {
		now = time.Now
	}
	c := &Conversation{now: now}
	c.Reset(greeting)
	return c
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append creates a message and adds it to the end of the conversation.
func (c *Conversation) Append(sender Sender, text string, isError bool) Message {
	at := c.now()
	msg := NewMessage(c.nextID(at), sender, text, at)
	msg.IsError = isError

	c.messages = append(c.messages, msg)
	c.pruneOldMessages()
	return msg
}

// Reset replaces every message with a single fresh greeting.
func (c *Conversation) Reset(greeting string) {
	c.messages = make([]Message, 0, 16)
	c.startedAt = c.now()
	c.Append(SenderBot, greeting, false)
}

// Messages returns a copy of the messages in creation order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// HasUserMessages reports whether the user has said anything yet.
func (c *Conversation) HasUserMessages() bool {
	for _, msg := range c.messages {
		if msg.IsUser() {
			return true
		}
	}
	return false
}

// StartedAt returns when the conversation was last reset.
func (c *Conversation) StartedAt() time.Time {
	return c.startedAt
}

// Title summarizes the conversation by its first user message.
func (c *Conversation) Title() string {
	for _, msg := range c.messages {
		if msg.IsUser() && !msg.IsEmpty() {
			return msg.Preview(titleLength)
		}
	}
	return "New chat"
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// nextID returns a millisecond timestamp that is strictly greater than the
// previous one, so two messages created in the same millisecond stay distinct.
func (c *Conversation) nextID(at time.Time) int64 {
	id := at.UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// pruneOldMessages drops the oldest messages after the greeting once the
// conversation exceeds MaxMessages.
func (c *Conversation) pruneOldMessages() {
	if len(c.messages) <= MaxMessages {
		return
	}
	excess := len(c.messages) - MaxMessages
	pruned := make([]Message, 0, MaxMessages)
	pruned = append(pruned, c.messages[0])
	pruned = append(pruned, c.messages[1+excess:]...)
	c.messages = pruned
}
