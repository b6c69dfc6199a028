// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"testing"
	"time"
)

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestSender_DisplayName(t *testing.T) {
	tests := []struct {
		sender Sender
		want   string
	}{
		{SenderUser, "You"},
		{SenderBot, "Bot"},
		{Sender("other"), "other"},
	}

	for _, tc := range tests {
		if got := tc.sender.DisplayName(); got != tc.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tc.sender, got, tc.want)
		}
	}
}

func TestNewMessage_FormatsClock(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 5, 0, 0, time.Local)
	msg := NewMessage(42, SenderUser, "hi", at)

	if msg.Time != "09:05" {
		t.Errorf("Time = %q, want 09:05", msg.Time)
	}
	if msg.ID != 42 || !msg.IsUser() || msg.IsBot() {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := Message{Text: "hello\n  world, this is long"}

	if got := msg.Preview(100); got != "hello world, this is long" {
		t.Errorf("Preview(100) = %q", got)
	}
	if got := msg.Preview(8); got != "hello..." {
		t.Errorf("Preview(8) = %q", got)
	}
	if got := (Message{Text: "héllo wörld"}).Preview(5); got != "hé..." {
		t.Errorf("unicode Preview(5) = %q", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation_StartsWithGreeting(t *testing.T) {
	conv := NewConversation("Hello!")

	if conv.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", conv.Len())
	}
	greeting, ok := conv.Last()
	if !ok || greeting.Sender != SenderBot || greeting.Text != "Hello!" {
		t.Errorf("greeting = %+v", greeting)
	}
	if conv.HasUserMessages() {
		t.Error("fresh conversation should have no user messages")
	}
}

func TestConversation_IDsStrictlyIncrease(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	conv := NewConversationWithClock("hi", fixedClock(at))

	for i := 0; i < 5; i++ {
		conv.Append(SenderUser, "same millisecond", false)
	}

	msgs := conv.Messages()
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Fatalf("message %d ID %d not greater than %d", i, msgs[i].ID, msgs[i-1].ID)
		}
	}
	if msgs[0].ID != at.UnixMilli() {
		t.Errorf("first ID = %d, want %d", msgs[0].ID, at.UnixMilli())
	}
}

func TestConversation_ResetKeepsIDsIncreasing(t *testing.T) {
	conv := NewConversationWithClock("hi", fixedClock(time.UnixMilli(1000)))
	conv.Append(SenderUser, "one", false)
	before, _ := conv.Last()

	conv.Reset("hi again")
	after, _ := conv.Last()

	if conv.Len() != 1 {
		t.Errorf("Len() after Reset = %d, want 1", conv.Len())
	}
	if after.ID <= before.ID {
		t.Errorf("greeting ID %d should exceed previous %d", after.ID, before.ID)
	}
}

func TestConversation_MessagesReturnsCopy(t *testing.T) {
	conv := NewConversation("hi")
	msgs := conv.Messages()
	msgs[0].Text = "mutated"

	if first := conv.Messages()[0]; first.Text != "hi" {
		t.Errorf("conversation was mutated through copy: %q", first.Text)
	}
}

func TestConversation_Title(t *testing.T) {
	conv := NewConversation("hi")
	if conv.Title() != "New chat" {
		t.Errorf("Title() = %q, want New chat", conv.Title())
	}

	conv.Append(SenderUser, strings.Repeat("x", 80), false)
	title := conv.Title()
	if len([]rune(title)) != titleLength || !strings.HasSuffix(title, "...") {
		t.Errorf("Title() = %q, want %d runes ending in ...", title, titleLength)
	}
}

func TestConversation_PruneKeepsGreeting(t *testing.T) {
	conv := NewConversation("greeting")
	for i := 0; i < MaxMessages+10; i++ {
		conv.Append(SenderUser, "m", false)
	}

	if conv.Len() != MaxMessages {
		t.Errorf("Len() = %d, want %d", conv.Len(), MaxMessages)
	}
	if conv.Messages()[0].Text != "greeting" {
		t.Error("greeting should survive pruning")
	}
}

func TestConversation_AppendError(t *testing.T) {
	conv := NewConversation("hi")
	msg := conv.Append(SenderBot, "⚠️ boom", true)

	if !msg.IsError {
		t.Error("IsError should be set")
	}
}
