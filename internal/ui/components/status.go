// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aria-tui/internal/ui/styles"
	"github.com/jeranaias/aria-tui/internal/util"
)

// NewMessageLabel is the text of the jump-to-bottom affordance.
const NewMessageLabel = "↓ New message"

// TypingIndicator renders the bot avatar followed by the spinner frame.
func TypingIndicator(botName, spinnerFrame string, theme *styles.Theme) string {
	return theme.BotAvatar.Render(util.Initial(botName)) + " " +
		theme.Typing.Render(spinnerFrame+" "+botName+" is typing")
}

// NewMessageButton renders the affordance centered in width.
func NewMessageButton(width int, theme *styles.Theme) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.NewMessageButton.Render(NewMessageLabel+"  ctrl+g"))
}
