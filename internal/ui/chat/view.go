// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aria-tui/internal/format"
	"github.com/jeranaias/aria-tui/internal/session"
	"github.com/jeranaias/aria-tui/internal/ui/components"
	"github.com/jeranaias/aria-tui/internal/ui/styles"
)

// minChatWidth keeps the chat column usable next to an open sidebar.
const minChatWidth = 20

// =============================================================================
// LAYOUT
// =============================================================================

// chatWidth is the width of the column right of the sidebar.
func (m Model) chatWidth() int {
	w := m.width
	if m.sidebarOpen {
		w -= styles.SidebarWidth
	}
	if w < minChatWidth {
		w = minChatWidth
	}
	return w
}

// layout sizes the widgets for the current window and sidebar state.
func (m *Model) layout() {
	if !m.sized {
		return
	}
	width := m.chatWidth()

	m.input.SetWidth(width - 4)
	m.help.Width = width

	header := lipgloss.Height(m.header(width).View())
	helpLines := lipgloss.Height(m.help.View(m.keys))
	inputBox := inputHeight + 2
	statusLine := 1

	height := m.height - header - statusLine - inputBox - helpLines
	if height < 3 {
		height = 3
	}
	m.viewport.Width = width
	m.viewport.Height = height
}

// relayout re-sizes and re-renders after a layout-affecting change.
func (m *Model) relayout() {
	m.layout()
	m.refreshContent()
}

func (m Model) header(width int) *components.Header {
	h := components.NewHeader(m.botName, m.theme)
	h.Width = width
	h.SidebarOpen = m.sidebarOpen
	return h
}

// =============================================================================
// CONTENT
// =============================================================================

// refreshContent re-renders every message and the code block index.
func (m *Model) refreshContent() {
	width := m.viewport.Width
	messages := m.session.Snapshot()

	var blocks []format.Segment
	for _, msg := range messages {
		if msg.IsBot() && !msg.IsError {
			blocks = append(blocks, format.CodeBlocks(format.Format(msg.Text))...)
		}
	}
	m.codeBlocks = blocks

	if m.session.IsWelcome() {
		w := components.NewWelcome(m.botName, m.session.Greeting(), m.suggestions, m.theme)
		if m.picking {
			w.Selected = m.selected
		}
		w.Width = width
		w.Height = m.viewport.Height
		m.messagesView = w.View()
		m.setContent()
		return
	}

	parts := make([]string, 0, len(messages))
	next := 1
	for _, msg := range messages {
		bubble := components.NewMessageBubble(msg, m.theme)
		bubble.Width = width - 1
		bubble.BotName = m.botName
		bubble.UserName = m.userName
		bubble.ShowTimestamp = m.showTimestamps
		bubble.FirstBlock = next

		var view string
		view, next = bubble.View()
		parts = append(parts, view)
	}
	m.messagesView = strings.Join(parts, "\n\n")
	m.setContent()
}

// setContent pushes the rendered messages, plus the typing indicator while
// a reply is pending, into the viewport.
func (m *Model) setContent() {
	content := m.messagesView
	if m.session.State() == session.StateSending {
		content += "\n\n" + components.TypingIndicator(m.botName, m.spinner.View(), m.theme)
	}
	m.viewport.SetContent(content)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	if !m.sized {
		return "Starting " + m.botName + "..."
	}
	width := m.chatWidth()

	var status string
	switch {
	case m.showNewMessage:
		status = components.NewMessageButton(width, m.theme)
	case m.notice != "":
		status = m.theme.Notice.Render(m.notice)
	}

	box := m.theme.InputContainer
	if m.session.State() == session.StateSending {
		box = m.theme.InputDisabled
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.header(width).View(),
		m.viewport.View(),
		status,
		box.Width(width-2).Render(m.input.View()),
		m.help.View(m.keys),
	)

	if !m.sidebarOpen {
		return main
	}
	sidebar := components.NewSidebar(m.userName, m.theme)
	sidebar.Recent = m.recent
	sidebar.Height = m.height
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar.View(), main)
}
