// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aria-tui/internal/model"
)

const greeting = "Hi! How can I help?"

func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 1, 14, 30, 0, 0, time.Local)
	return func() time.Time { return t }
}

// =============================================================================
// CREATION TESTS
// =============================================================================

func TestNew(t *testing.T) {
	m := New(greeting)

	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.IsWelcome())
	assert.False(t, m.HasUserMessages())

	msgs := m.Snapshot()
	assert.Equal(t, model.SenderBot, msgs[0].Sender)
	assert.Equal(t, greeting, msgs[0].Text)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "sending", StateSending.String())
	assert.Equal(t, "unknown", State(42).String())
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_AppendsTrimmedUserMessage(t *testing.T) {
	m := NewWithClock(greeting, fixedClock())

	query, err := m.Submit("  what is a goroutine?\n")
	require.NoError(t, err)
	assert.Equal(t, "what is a goroutine?", query)
	assert.Equal(t, StateSending, m.State())
	assert.False(t, m.IsWelcome())

	pending, ok := m.Pending()
	assert.True(t, ok)
	assert.Equal(t, query, pending)

	msgs := m.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.SenderUser, msgs[1].Sender)
	assert.Equal(t, "what is a goroutine?", msgs[1].Text)
	assert.Equal(t, "14:30", msgs[1].Time)
}

func TestSubmit_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		m := New(greeting)
		_, err := m.Submit(input)
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", input)
		assert.Equal(t, 1, m.Len())
		assert.Equal(t, StateIdle, m.State())
	}
}

func TestSubmit_WhileSendingIsNoOp(t *testing.T) {
	m := New(greeting)
	_, err := m.Submit("first")
	require.NoError(t, err)

	before := m.Len()
	_, err = m.Submit("second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, before, m.Len())

	pending, _ := m.Pending()
	assert.Equal(t, "first", pending)
}

// =============================================================================
// SETTLE TESTS
// =============================================================================

func TestSucceed(t *testing.T) {
	m := New(greeting)
	query, _ := m.Submit("hello")

	s := m.Succeed(query, "hi there")
	assert.False(t, s.Stale)
	assert.Equal(t, model.SenderBot, s.Message.Sender)
	assert.Equal(t, "hi there", s.Message.Text)
	assert.False(t, s.Message.IsError)
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, 3, m.Len())

	_, ok := m.Pending()
	assert.False(t, ok)
}

func TestFail(t *testing.T) {
	m := New(greeting)
	query, _ := m.Submit("hello")

	s := m.Fail(query, "connection refused")
	assert.True(t, s.Message.IsError)
	assert.Equal(t, "⚠️ connection refused", s.Message.Text)
	assert.True(t, strings.HasPrefix(s.Message.Text, ErrorPrefix))
	assert.Equal(t, StateIdle, m.State())

	// Sending stays possible after a failure.
	_, err := m.Submit("again")
	assert.NoError(t, err)
}

func TestSendCycle_OneUserOneBotPerSend(t *testing.T) {
	m := New(greeting)

	for i := 0; i < 5; i++ {
		before := m.Len()
		query, err := m.Submit("q")
		require.NoError(t, err)
		assert.Equal(t, before+1, m.Len())

		if i%2 == 0 {
			m.Succeed(query, "a")
		} else {
			m.Fail(query, "boom")
		}
		assert.Equal(t, before+2, m.Len())
	}

	msgs := m.Snapshot()
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID, "IDs must increase")
	}
}

// =============================================================================
// CLEAR TESTS
// =============================================================================

func TestClear_LeavesSingleGreeting(t *testing.T) {
	m := New(greeting)
	query, _ := m.Submit("hello")
	m.Succeed(query, "hi")

	previous := m.Clear()
	assert.Len(t, previous, 3)

	msgs := m.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, greeting, msgs[0].Text)
	assert.True(t, m.IsWelcome())
	assert.False(t, m.HasUserMessages())
}

func TestClear_CancelsLoadingButLateReplyIsAppended(t *testing.T) {
	m := New(greeting)
	query, _ := m.Submit("slow question")
	m.Clear()

	assert.Equal(t, StateIdle, m.State())

	s := m.Succeed(query, "late answer")
	assert.True(t, s.Stale)

	msgs := m.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, "late answer", msgs[1].Text)
}

func TestClear_AllowsImmediateSend(t *testing.T) {
	m := New(greeting)
	_, _ = m.Submit("first")
	m.Clear()

	_, err := m.Submit("second")
	assert.NoError(t, err)
}

func TestTitle(t *testing.T) {
	m := New(greeting)
	assert.Equal(t, "New chat", m.Title())

	_, _ = m.Submit("explain channels")
	assert.Equal(t, "explain channels", m.Title())
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestSubmit_ConcurrentOnlyOneWins(t *testing.T) {
	m := New(greeting)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Submit("race")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, ErrBusy) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 2, m.Len())
}
