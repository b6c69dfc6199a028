// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/aria-tui/internal/client"
	"github.com/jeranaias/aria-tui/internal/config"
	"github.com/jeranaias/aria-tui/internal/format"
	"github.com/jeranaias/aria-tui/internal/model"
	"github.com/jeranaias/aria-tui/internal/session"
	"github.com/jeranaias/aria-tui/internal/ui/styles"
)

// inputHeight is the number of text rows in the input box.
const inputHeight = 3

// Options wires a Model to its collaborators.
type Options struct {
	Config *config.Config
	Client Asker

	// Store archives cleared chats; nil disables history.
	Store Archive

	// Watcher pushes config changes; nil disables live reload.
	Watcher *config.Watcher

	Logger *zap.Logger
	Theme  *styles.Theme

	// Now overrides the clock for message timestamps.
	Now func() time.Time
}

// Model is the chat screen.
type Model struct {
	// Collaborators
	session *session.Machine
	client  Asker
	store   Archive
	watcher *config.Watcher
	logger  *zap.Logger
	theme   *styles.Theme
	keys    KeyMap

	// UI settings, refreshed on config reload
	botName        string
	userName       string
	suggestions    []string
	showTimestamps bool
	sidebarPref    *bool

	// Widgets
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model

	// Layout
	width       int
	height      int
	sized       bool
	sidebarOpen bool

	// View state
	picking        bool
	selected       int
	showNewMessage bool
	messagesView   string
	codeBlocks     []format.Segment
	recent         []string
	notice         string
	noticeSeq      int
}

// New creates the chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}

	var machine *session.Machine
	if opts.Now != nil {
		machine = session.NewWithClock(cfg.UI.Greeting, opts.Now)
	} else {
		machine = session.New(cfg.UI.Greeting)
	}

	input := textarea.New()
	input.Placeholder = "Message " + cfg.UI.BotName + "..."
	input.Prompt = ""
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline = DefaultKeyMap().Newline
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = theme.Typing

	m := Model{
		session:  machine,
		client:   opts.Client,
		store:    opts.Store,
		watcher:  opts.Watcher,
		logger:   logger.Named("chat"),
		theme:    theme,
		keys:     DefaultKeyMap(),
		viewport: viewport.New(80, 20),
		input:    input,
		spinner:  sp,
		help:     help.New(),
	}
	m.applyUIConfig(cfg.UI)
	return m
}

// applyUIConfig copies the reloadable UI settings.
func (m *Model) applyUIConfig(ui config.UIConfig) {
	m.botName = ui.BotName
	m.userName = ui.UserName
	m.suggestions = ui.Suggestions
	m.showTimestamps = ui.ShowTimestamps
	m.sidebarPref = ui.SidebarOpen
	m.input.Placeholder = "Message " + ui.BotName + "..."
}

// Init loads the recent list and starts watching the config file.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.store != nil {
		cmds = append(cmds, loadRecentCmd(m.store))
	}
	if m.watcher != nil {
		cmds = append(cmds, watchConfigCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.syncNewMessage()
		return m, cmd

	case spinner.TickMsg:
		if m.session.State() != session.StateSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.setContent()
		return m, cmd

	case ReplyMsg:
		return m.handleReply(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case RecentLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("load recent conversations", zap.Error(msg.Err))
			return m, nil
		}
		m.recent = msg.Titles
		return m, nil

	case ArchivedMsg:
		if msg.Err != nil {
			m.logger.Warn("archive conversation", zap.Error(msg.Err))
			return m.setNotice("Could not save chat history")
		}
		m.logger.Debug("conversation archived", zap.String("id", msg.ID))
		return m, loadRecentCmd(m.store)

	case CopiedMsg:
		if msg.Err != nil {
			m.logger.Debug("clipboard write failed", zap.Error(msg.Err))
			return m, nil
		}
		return m.setNotice("Copied code block " + strconv.Itoa(msg.Block))

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	if !m.sized {
		m.sized = true
		if m.sidebarPref != nil {
			m.sidebarOpen = *m.sidebarPref
		} else {
			m.sidebarOpen = !styles.IsNarrow(msg.Width)
		}
	}

	wasNear := IsNearBottom(m.viewport)
	m.layout()
	m.refreshContent()
	if wasNear {
		m.viewport.GotoBottom()
	}
	m.syncNewMessage()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarOpen = !m.sidebarOpen
		m.relayout()
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		return m.clearChat()

	case key.Matches(msg, m.keys.CopyLatest):
		return m.copyBlock(len(m.codeBlocks))

	case key.Matches(msg, m.keys.CopyBlock):
		return m.copyBlock(digitOf(msg.String()))

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.relayout()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		m.syncNewMessage()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		m.syncNewMessage()
		return m, nil

	case key.Matches(msg, m.keys.LineUp):
		m.viewport.LineUp(1)
		m.syncNewMessage()
		return m, nil

	case key.Matches(msg, m.keys.LineDown):
		m.viewport.LineDown(1)
		m.syncNewMessage()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.showNewMessage = false
		return m, nil
	}

	// The input is disabled while a reply is pending.
	if m.session.State() == session.StateSending {
		return m, nil
	}

	if m.picking {
		return m.handlePickKey(msg)
	}
	if key.Matches(msg, m.keys.PickStart) && m.canPick() {
		m.picking = true
		m.selected = 0
		m.input.Blur()
		m.refreshContent()
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// canPick reports whether suggestions can be picked: the chat is fresh and
// nothing has been typed.
func (m Model) canPick() bool {
	return len(m.suggestions) > 0 && m.input.Value() == "" && m.session.IsWelcome()
}

// handlePickKey handles a key while the suggestion list has focus. Keys
// without a meaning there return focus to the input and are typed into it.
func (m Model) handlePickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.canPick() {
		focus := m.stopPicking()
		return m, focus
	}

	switch {
	case key.Matches(msg, m.keys.Suggestion):
		if n := digitOf(msg.String()); n >= 1 && n <= len(m.suggestions) {
			return m.submit(m.suggestions[n-1])
		}
	case key.Matches(msg, m.keys.Submit):
		return m.submit(m.suggestions[min(m.selected, len(m.suggestions)-1)])
	case key.Matches(msg, m.keys.PickPrev):
		m.selected = max(m.selected-1, 0)
		m.refreshContent()
		return m, nil
	case key.Matches(msg, m.keys.PickNext):
		m.selected = min(m.selected+1, len(m.suggestions)-1)
		m.refreshContent()
		return m, nil
	case key.Matches(msg, m.keys.PickCancel):
		focus := m.stopPicking()
		return m, focus
	}

	focus := m.stopPicking()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(focus, cmd)
}

// stopPicking hands focus back to the input.
func (m *Model) stopPicking() tea.Cmd {
	m.picking = false
	m.refreshContent()
	return m.input.Focus()
}

// Picking reports whether the suggestion list has focus.
func (m Model) Picking() bool { return m.picking }

// submit sends text if the session accepts it.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	query, err := m.session.Submit(text)
	if errors.Is(err, session.ErrEmptyInput) || errors.Is(err, session.ErrBusy) {
		return m, nil
	}
	if err != nil {
		m.logger.Warn("submit", zap.Error(err))
		return m, nil
	}

	m.picking = false
	m.input.Reset()
	m.input.Blur()
	if m.theme.IsNarrow() {
		m.sidebarOpen = false
	}
	m.relayout()

	// The user's own message always scrolls.
	m.viewport.GotoBottom()
	m.showNewMessage = false

	if m.client == nil {
		return m, func() tea.Msg {
			return ReplyMsg{Query: query, Err: errors.New(client.FallbackErrorText)}
		}
	}
	return m, tea.Batch(askCmd(m.client, query), m.spinner.Tick)
}

// handleReply settles the pending query. A reply that arrives after the
// chat was cleared is still appended.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	wasNear := IsNearBottom(m.viewport)

	var settled session.Settlement
	if msg.Err != nil {
		settled = m.session.Fail(msg.Query, client.ErrorText(msg.Err))
	} else {
		settled = m.session.Succeed(msg.Query, msg.Text)
	}
	if settled.Stale {
		m.logger.Info("late reply appended", zap.Int64("message_id", settled.Message.ID))
	}
	m.picking = false

	m.refreshContent()
	if ShouldAutoScroll(settled.Message.IsUser(), wasNear) {
		m.viewport.GotoBottom()
		m.showNewMessage = false
	} else {
		m.showNewMessage = true
	}

	cmd := m.input.Focus()
	return m, cmd
}

// clearChat resets to the greeting and archives the old chat when it held
// anything the user wrote.
func (m Model) clearChat() (tea.Model, tea.Cmd) {
	previous := m.session.Clear()

	m.picking = false
	m.input.Reset()
	m.showNewMessage = false
	if m.theme.IsNarrow() {
		m.sidebarOpen = false
	}
	m.relayout()
	m.viewport.GotoTop()

	focus := m.input.Focus()
	if m.store == nil || !hasUserMessage(previous) {
		return m, focus
	}
	return m, tea.Batch(focus, archiveCmd(m.store, previous))
}

// copyBlock copies code block n (1-based) of the conversation.
func (m Model) copyBlock(n int) (tea.Model, tea.Cmd) {
	if n < 1 || n > len(m.codeBlocks) {
		return m, nil
	}
	return m, copyCmd(n, m.codeBlocks[n-1].Code)
}

func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	var next tea.Cmd
	if m.watcher != nil {
		next = watchConfigCmd(m.watcher)
	}
	if msg.Err != nil {
		m.logger.Warn("config reload rejected", zap.Error(msg.Err))
		updated, cmd := m.setNotice("Config not reloaded: " + msg.Err.Error())
		return updated, tea.Batch(cmd, next)
	}

	m.applyUIConfig(msg.Config.UI)
	m.relayout()
	m.logger.Info("config reloaded")
	updated, cmd := m.setNotice("Config reloaded")
	return updated, tea.Batch(cmd, next)
}

// setNotice shows a transient status line.
func (m Model) setNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	return m, expireNoticeCmd(m.noticeSeq)
}

// syncNewMessage hides the affordance once the reader is back near the
// bottom.
func (m *Model) syncNewMessage() {
	if m.showNewMessage && IsNearBottom(m.viewport) {
		m.showNewMessage = false
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Session returns the conversation state machine.
func (m Model) Session() *session.Machine { return m.session }

// SidebarOpen reports whether the sidebar is shown.
func (m Model) SidebarOpen() bool { return m.sidebarOpen }

// ShowingNewMessage reports whether the jump-to-bottom affordance is shown.
func (m Model) ShowingNewMessage() bool { return m.showNewMessage }

// CodeBlocks returns the code blocks of the conversation in order.
func (m Model) CodeBlocks() []format.Segment { return m.codeBlocks }

// Notice returns the current status notice, if any.
func (m Model) Notice() string { return m.notice }

func hasUserMessage(messages []model.Message) bool {
	for _, msg := range messages {
		if msg.IsUser() {
			return true
		}
	}
	return false
}
