// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aria-tui/internal/format"
	"github.com/jeranaias/aria-tui/internal/model"
	"github.com/jeranaias/aria-tui/internal/ui/styles"
	"github.com/jeranaias/aria-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one message of the conversation.
type MessageBubble struct {
	Message       model.Message
	Width         int
	BotName       string
	UserName      string
	ShowTimestamp bool

	// FirstBlock numbers the first code block of a bot reply.
	FirstBlock int

	theme *styles.Theme
}

// NewMessageBubble creates a bubble with default names.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		BotName:       "Aria",
		UserName:      "You",
		ShowTimestamp: true,
		FirstBlock:    1,
		theme:         theme,
	}
}

// View renders the bubble. For bot replies it also returns the number of
// the next code block.
func (b *MessageBubble) View() (string, int) {
	if b.Message.IsUser() {
		return b.renderUser(), b.FirstBlock
	}
	return b.renderBot()
}

// contentWidth is the text width inside a bubble, leaving room for the
// opposite margin, border and padding.
func (b *MessageBubble) contentWidth() int {
	w := b.Width*4/5 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (b *MessageBubble) meta(name string) string {
	parts := []string{b.theme.SenderName.Render(name)}
	if b.ShowTimestamp && b.Message.Time != "" {
		parts = append(parts, b.theme.Timestamp.Render(b.Message.Time))
	}
	return strings.Join(parts, " ")
}

// renderUser right-aligns the user's text, which is shown verbatim.
func (b *MessageBubble) renderUser() string {
	maxWidth := b.contentWidth()
	text := b.Message.Text
	if util.StringWidth(text) < maxWidth && !strings.Contains(text, "\n") {
		maxWidth = util.StringWidth(text)
	}
	bubble := b.theme.UserBubble.Width(maxWidth + 4).Render(text)

	block := lipgloss.JoinVertical(lipgloss.Right, b.meta(b.UserName), bubble)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

// renderBot left-aligns the reply behind the bot's avatar. Error replies are
// shown verbatim in the error style; everything else is formatted.
func (b *MessageBubble) renderBot() (string, int) {
	avatar := b.theme.BotAvatar.Render(util.Initial(b.BotName))
	header := avatar + " " + b.meta(b.BotName)

	width := b.contentWidth()
	next := b.FirstBlock

	var bubble string
	if b.Message.IsError {
		bubble = b.theme.ErrorBubble.Width(width + 2).Render(b.Message.Text)
	} else {
		var body string
		body, next = RenderSegments(format.Format(b.Message.Text), width, b.FirstBlock, b.theme)
		bubble = b.theme.BotBubble.Render(body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bubble), next
}
