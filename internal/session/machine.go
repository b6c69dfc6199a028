// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/aria-tui/internal/model"
)

// ErrorPrefix is prepended to the text of every error bot message.
const ErrorPrefix = "⚠️ "

var (
	// ErrBusy is returned when a query is submitted while another is in flight.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyInput is returned when the trimmed input is empty.
	ErrEmptyInput = errors.New("input is empty")
)

// =============================================================================
// STATE
// =============================================================================

// State is the phase of the send/receive cycle.
type State int

const (
	StateIdle    State = iota // Ready to accept a query
	StateSending              // One query in flight
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Settlement describes the bot message appended by Succeed or Fail.
type Settlement struct {
	Message model.Message

	// Stale is true when the settled query is not the pending one, which
	// happens when the conversation was cleared while the request ran.
	Stale bool
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine is the conversation state machine. It is safe for concurrent use,
// though the TUI only touches it from Update.
type Machine struct {
	mu       sync.Mutex
	conv     *model.Conversation
	greeting string
	state    State
	pending  string
}

// New creates an idle machine holding a single greeting.
func New(greeting string) *Machine {
	return NewWithClock(greeting, time.Now)
}

// NewWithClock is New with an injectable clock for message timestamps.
func NewWithClock(greeting string, now func() time.Time) *Machine {
	return &Machine{
		conv:     model.NewConversationWithClock(greeting, now),
		greeting: greeting,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pending returns the in-flight query, if any.
func (m *Machine) Pending() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, m.state == StateSending
}

// Submit trims input and, when the machine is idle, appends it as a user
// message and moves to Sending. The returned query is what should be sent.
func (m *Machine) Submit(input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", ErrEmptyInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateSending {
		return "", ErrBusy
	}

	m.conv.Append(model.SenderUser, query, false)
	m.state = StateSending
	m.pending = query
	return query, nil
}

// Succeed settles query with a bot reply and returns to Idle.
func (m *Machine) Succeed(query, reply string) Settlement {
	return m.settle(query, reply, false)
}

// Fail settles query with an error-flagged bot message and returns to Idle.
// The text is prefixed with ErrorPrefix.
func (m *Machine) Fail(query, errText string) Settlement {
	return m.settle(query, ErrorPrefix+errText, true)
}

// settle appends exactly one bot message whatever the current state.
func (m *Machine) settle(query, text string, isError bool) Settlement {
	m.mu.Lock()
	defer m.mu.Unlock()

	stale := m.state != StateSending || m.pending != query
	msg := m.conv.Append(model.SenderBot, text, isError)

	m.state = StateIdle
	m.pending = ""
	return Settlement{Message: msg, Stale: stale}
}

// Clear resets the conversation to a fresh greeting and drops the loading
// flag. It returns the messages that were discarded. An in-flight request is
// not aborted.
func (m *Machine) Clear() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.conv.Messages()
	m.conv.Reset(m.greeting)
	m.state = StateIdle
	m.pending = ""
	return previous
}

// Snapshot returns a copy of the messages in creation order.
func (m *Machine) Snapshot() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Messages()
}

// Len returns the number of messages.
func (m *Machine) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Len()
}

// HasUserMessages reports whether the user has sent anything since the
// last Clear.
func (m *Machine) HasUserMessages() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.HasUserMessages()
}

// Title summarizes the current conversation.
func (m *Machine) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Title()
}

// IsWelcome reports whether only the greeting is showing and nothing is
// loading.
func (m *Machine) IsWelcome() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Len() == 1 && m.state == StateIdle
}

// Greeting returns the greeting text used on Clear.
func (m *Machine) Greeting() string {
	return m.greeting
}
