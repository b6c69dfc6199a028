// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aria-tui/internal/ui/styles"
	"github.com/jeranaias/aria-tui/internal/util"
)

// DefaultSubtitle is shown under the bot name.
const DefaultSubtitle = "Groq · Spring Boot"

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar above the conversation.
type Header struct {
	Title       string
	Subtitle    string
	SidebarOpen bool
	Width       int
	theme       *styles.Theme
}

// NewHeader creates a header for the given bot.
func NewHeader(botName string, theme *styles.Theme) *Header {
	return &Header{
		Title:    botName,
		Subtitle: DefaultSubtitle,
		Width:    80,
		theme:    theme,
	}
}

// View renders the header. The left side carries the sidebar toggle, the
// avatar, the title and the subtitle; the right side the online dot.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}
	inner := width - 2

	toggle := "☰"
	if h.SidebarOpen {
		toggle = "✕"
	}

	left := strings.Join([]string{
		h.theme.HeaderToggle.Render(toggle),
		h.theme.BotAvatar.Render(util.Initial(h.Title)),
		h.theme.HeaderTitle.Render(h.Title),
		h.theme.HeaderSubtitle.Render(h.Subtitle),
	}, " ")
	right := h.theme.Online.Render("● online")

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		left = h.theme.HeaderToggle.Render(toggle) + " " + h.theme.HeaderTitle.Render(h.Title)
		gap = inner - lipgloss.Width(left) - lipgloss.Width(right)
	}
	if gap < 1 {
		gap = 1
	}

	return h.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
