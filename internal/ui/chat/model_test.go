// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aria-tui/internal/client"
	"github.com/jeranaias/aria-tui/internal/config"
	"github.com/jeranaias/aria-tui/internal/session"
	"github.com/jeranaias/aria-tui/internal/storage"
	"github.com/jeranaias/aria-tui/internal/ui/components"
	"github.com/jeranaias/aria-tui/internal/ui/styles"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeAsker struct {
	mu      sync.Mutex
	queries []string
	reply   string
}

func (f *fakeAsker) Ask(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.reply, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	saved []*storage.StoredConversation
}

func (f *fakeArchive) Save(conv *storage.StoredConversation) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, conv)
	return "conv_test", nil
}

func (f *fakeArchive) Recent(n int) ([]storage.ConversationMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	metas := make([]storage.ConversationMeta, 0, len(f.saved))
	for _, conv := range f.saved {
		metas = append(metas, storage.ConversationMeta{Summary: conv.Preview()})
	}
	return metas, nil
}

func (f *fakeArchive) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

// =============================================================================
// HELPERS
// =============================================================================

func newTestModel(t *testing.T, width int, opts Options) Model {
	t.Helper()
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	opts.Theme = styles.NewTheme(styles.ModeDark)
	opts.Now = func() time.Time { return time.Date(2025, 1, 2, 14, 30, 0, 0, time.Local) }

	m, _ := update(New(opts), tea.WindowSizeMsg{Width: width, Height: 40})
	return m
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(m Model, text string) Model {
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// collect runs cmd and every command nested in batches, each on its own
// goroutine, and returns the messages produced within timeout.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var (
		mu   sync.Mutex
		msgs []tea.Msg
		wg   sync.WaitGroup
	)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, inner := range batch {
					run(inner)
				}
				return
			}
			mu.Lock()
			msgs = append(msgs, msg)
			mu.Unlock()
		}()
	}
	run(cmd)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("commands did not finish")
	}
	return msgs
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// =============================================================================
// SEND AND SETTLE TESTS
// =============================================================================

func TestSubmit_AppendsUserMessageAndAsks(t *testing.T) {
	asker := &fakeAsker{reply: "pong"}
	m := newTestModel(t, 120, Options{Client: asker})

	m = typeText(m, "  ping ")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, session.StateSending, m.Session().State())
	require.Equal(t, 2, m.Session().Len())
	assert.Equal(t, "ping", m.Session().Snapshot()[1].Text)
	assert.Contains(t, m.View(), "is typing")

	reply, ok := findMsg[ReplyMsg](collect(t, cmd))
	require.True(t, ok)
	assert.Equal(t, ReplyMsg{Query: "ping", Text: "pong"}, reply)
	assert.Equal(t, []string{"ping"}, asker.queries)
}

func TestSubmit_EmptyInputIsIgnored(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "   ")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Session().Len())
	assert.Equal(t, session.StateIdle, m.Session().State())
}

func TestSubmit_InputDisabledWhileSending(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "first")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(m, "second")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, 2, m.Session().Len())
	assert.Empty(t, m.input.Value())
}

func TestReply_AppendsBotMessage(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "hi")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, ReplyMsg{Query: "hi", Text: "Hello **there**"})

	assert.Equal(t, session.StateIdle, m.Session().State())
	messages := m.Session().Snapshot()
	require.Len(t, messages, 3)
	assert.Equal(t, "Hello **there**", messages[2].Text)
	assert.False(t, messages[2].IsError)
	assert.NotContains(t, m.View(), "is typing")
}

func TestReply_ErrorIsFlagged(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "hi")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, ReplyMsg{Query: "hi", Err: &client.RequestError{Status: 500, Body: "upstream exploded"}})

	last := m.Session().Snapshot()[2]
	assert.True(t, last.IsError)
	assert.Equal(t, session.ErrorPrefix+"upstream exploded", last.Text)

	// Sending stays possible.
	m = typeText(m, "again")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, session.StateSending, m.Session().State())
}

func TestSubmit_WithoutClientFails(t *testing.T) {
	m := newTestModel(t, 120, Options{})

	m = typeText(m, "hi")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	reply, ok := findMsg[ReplyMsg](collect(t, cmd))
	require.True(t, ok)
	m, _ = update(m, reply)
	assert.Equal(t, session.ErrorPrefix+client.FallbackErrorText, m.Session().Snapshot()[2].Text)
}

// =============================================================================
// WELCOME AND SUGGESTION TESTS
// =============================================================================

func TestWelcome_ShownForFreshChat(t *testing.T) {
	m := newTestModel(t, 120, Options{})

	view := m.View()
	assert.Contains(t, view, components.WelcomeTitle)
	for _, s := range config.DefaultSuggestions {
		assert.Contains(t, view, s)
	}
}

func pressTab(m Model) Model {
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	return m
}

func TestDigitOnFreshChat_StartsMessage(t *testing.T) {
	asker := &fakeAsker{}
	m := newTestModel(t, 120, Options{Client: asker})

	m = typeText(m, "2")
	m = typeText(m, " + 2?")

	assert.Equal(t, 1, m.Session().Len())
	assert.Equal(t, "2 + 2?", m.input.Value())
	_, pending := m.Session().Pending()
	assert.False(t, pending)
	assert.Empty(t, asker.queries)
}

func TestSuggestionKey_SendsSuggestion(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = pressTab(m)
	require.True(t, m.Picking())
	assert.Contains(t, m.View(), components.SuggestionPickingHint)

	m = typeText(m, "2")

	pending, ok := m.Session().Pending()
	require.True(t, ok)
	assert.Equal(t, config.DefaultSuggestions[1], pending)
	assert.False(t, m.Picking())
	assert.NotContains(t, m.View(), components.WelcomeTitle)
}

func TestSuggestionPick_ArrowsAndEnter(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = pressTab(m)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	pending, ok := m.Session().Pending()
	require.True(t, ok)
	assert.Equal(t, config.DefaultSuggestions[1], pending)
}

func TestSuggestionPick_SelectionClamps(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = pressTab(m)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.selected)
	for range config.DefaultSuggestions {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, len(config.DefaultSuggestions)-1, m.selected)
}

func TestSuggestionPick_EscReturnsToInput(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = pressTab(m)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.Picking())
	assert.True(t, m.input.Focused())
	assert.Equal(t, 1, m.Session().Len())
	assert.Contains(t, m.View(), components.SuggestionHint)
}

func TestSuggestionPick_OtherKeyIsTyped(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = pressTab(m)
	m = typeText(m, "x")

	assert.False(t, m.Picking())
	assert.Equal(t, "x", m.input.Value())
	assert.Equal(t, 1, m.Session().Len())
}

func TestSuggestionKey_OutOfRangeTypesDigit(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = pressTab(m)
	m = typeText(m, "9")

	assert.False(t, m.Picking())
	assert.Equal(t, 1, m.Session().Len())
	assert.Equal(t, "9", m.input.Value())
}

func TestSuggestionKey_IgnoredWithInput(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "a")
	m = pressTab(m)

	assert.False(t, m.Picking())
	m = typeText(m, "1")
	assert.Equal(t, 1, m.Session().Len())
	assert.Contains(t, m.input.Value(), "a")
	assert.True(t, strings.HasSuffix(m.input.Value(), "1"))
}

// =============================================================================
// CLEAR TESTS
// =============================================================================

func TestClear_ArchivesConversationWithUserMessages(t *testing.T) {
	store := &fakeArchive{}
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}, Store: store})

	m = typeText(m, "remember me")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, ReplyMsg{Query: "remember me", Text: "ok"})
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlN})

	assert.Equal(t, 1, m.Session().Len())
	assert.Contains(t, m.View(), components.WelcomeTitle)

	archived, ok := findMsg[ArchivedMsg](collect(t, cmd))
	require.True(t, ok)
	assert.NoError(t, archived.Err)
	require.Equal(t, 1, store.count())
	assert.Len(t, store.saved[0].Messages, 3)

	// The sidebar list is refreshed afterwards.
	m, cmd = update(m, archived)
	recent, ok := findMsg[RecentLoadedMsg](collect(t, cmd))
	require.True(t, ok)
	m, _ = update(m, recent)
	assert.Contains(t, m.View(), "remember me")
}

func TestClear_FreshChatIsNotArchived(t *testing.T) {
	store := &fakeArchive{}
	m := newTestModel(t, 120, Options{Store: store})

	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	collect(t, cmd)

	assert.Equal(t, 0, store.count())
}

func TestClear_LateReplyIsStillAppended(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "slow question")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, session.StateIdle, m.Session().State())

	m, _ = update(m, ReplyMsg{Query: "slow question", Text: "late answer"})

	messages := m.Session().Snapshot()
	require.Len(t, messages, 2)
	assert.Equal(t, "late answer", messages[1].Text)
}

// =============================================================================
// COPY TESTS
// =============================================================================

func TestCopy_CodeBlocks(t *testing.T) {
	var copied []string
	orig := clipboardWrite
	clipboardWrite = func(text string) error {
		copied = append(copied, text)
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})
	m = typeText(m, "code please")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, ReplyMsg{Query: "code please", Text: "```go\nfirst()\n```\nand\n```sh\nsecond\n```"})
	require.Len(t, m.CodeBlocks(), 2)

	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	msg, ok := findMsg[CopiedMsg](collect(t, cmd))
	require.True(t, ok)
	assert.Equal(t, 2, msg.Block)

	_, cmd = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}, Alt: true})
	collect(t, cmd)

	assert.Equal(t, []string{"second", "first()"}, copied)

	_, cmd = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}, Alt: true})
	assert.Nil(t, cmd)
}

func TestCopy_NoBlocksIsNoop(t *testing.T) {
	m := newTestModel(t, 120, Options{})
	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Nil(t, cmd)
}

// =============================================================================
// SIDEBAR TESTS
// =============================================================================

func TestSidebar_DefaultsByWidth(t *testing.T) {
	wide := newTestModel(t, 120, Options{})
	assert.True(t, wide.SidebarOpen())
	assert.Contains(t, wide.View(), components.DefaultBrand)

	narrow := newTestModel(t, styles.NarrowWidth, Options{})
	assert.False(t, narrow.SidebarOpen())
	assert.NotContains(t, narrow.View(), components.DefaultBrand)
}

func TestSidebar_ConfigOverridesDefault(t *testing.T) {
	cfg := config.Default()
	closed := false
	cfg.UI.SidebarOpen = &closed

	m := newTestModel(t, 120, Options{Config: cfg})
	assert.False(t, m.SidebarOpen())
}

func TestSidebar_Toggle(t *testing.T) {
	m := newTestModel(t, 120, Options{})

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.False(t, m.SidebarOpen())
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.True(t, m.SidebarOpen())
}

func TestSidebar_ClosesAfterSendOnNarrow(t *testing.T) {
	m := newTestModel(t, 70, Options{Client: &fakeAsker{}})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	require.True(t, m.SidebarOpen())

	m = typeText(m, "hi")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.SidebarOpen())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.False(t, m.SidebarOpen())
}

func TestSidebar_StaysOpenAfterSendOnWide(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "hi")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.SidebarOpen())
}

// =============================================================================
// SCROLL AFFORDANCE TESTS
// =============================================================================

func TestNewMessage_ShownWhenScrolledAway(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})
	long := strings.Repeat("line of reply\n", 120)

	m = typeText(m, "q1")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, ReplyMsg{Query: "q1", Text: long})
	assert.False(t, m.ShowingNewMessage(), "reader was at the bottom")

	m = typeText(m, "q2")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	for i := 0; i < 20; i++ {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyPgUp})
	}
	require.False(t, IsNearBottom(m.viewport))

	m, _ = update(m, ReplyMsg{Query: "q2", Text: "short"})
	assert.True(t, m.ShowingNewMessage())
	assert.Contains(t, m.View(), components.NewMessageLabel)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.False(t, m.ShowingNewMessage())
	assert.True(t, IsNearBottom(m.viewport))
}

func TestNewMessage_HiddenWhenScrollingBack(t *testing.T) {
	m := newTestModel(t, 120, Options{Client: &fakeAsker{}})

	m = typeText(m, "q1")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, ReplyMsg{Query: "q1", Text: strings.Repeat("x\n", 120)})
	m = typeText(m, "q2")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	for i := 0; i < 20; i++ {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyPgUp})
	}
	m, _ = update(m, ReplyMsg{Query: "q2", Text: "done"})
	require.True(t, m.ShowingNewMessage())

	for i := 0; i < 20; i++ {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyPgDown})
	}
	assert.False(t, m.ShowingNewMessage())
}

// =============================================================================
// CONFIG RELOAD TESTS
// =============================================================================

func TestConfigReload_AppliesUISettings(t *testing.T) {
	m := newTestModel(t, 120, Options{})

	cfg := config.Default()
	cfg.UI.BotName = "Nova"
	cfg.UI.Suggestions = []string{"Tell me a joke"}
	m, cmd := update(m, ConfigReloadedMsg{Config: cfg})

	assert.NotNil(t, cmd)
	assert.Equal(t, "Config reloaded", m.Notice())
	view := m.View()
	assert.Contains(t, view, "Nova")
	assert.Contains(t, view, "Tell me a joke")
}

func TestConfigReload_ErrorKeepsSettings(t *testing.T) {
	m := newTestModel(t, 120, Options{})

	m, _ = update(m, ConfigReloadedMsg{Err: errors.New("ui.theme: invalid theme")})

	assert.Contains(t, m.Notice(), "Config not reloaded")
	assert.Contains(t, m.View(), "Aria")
}

func TestNotice_Expires(t *testing.T) {
	m := newTestModel(t, 120, Options{})
	m, _ = update(m, ConfigReloadedMsg{Config: config.Default()})
	seq := m.noticeSeq

	m, _ = update(m, noticeExpiredMsg{seq: seq - 1})
	assert.NotEmpty(t, m.Notice(), "stale expiry is ignored")

	m, _ = update(m, noticeExpiredMsg{seq: seq})
	assert.Empty(t, m.Notice())
}
