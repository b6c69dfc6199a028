// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aria-tui/internal/ui/styles"
	"github.com/jeranaias/aria-tui/internal/util"
)

// Welcome screen text.
const (
	WelcomeTitle    = "How can I help you?"
	WelcomeSubtitle = "Ask me anything, powered by Groq."

	SuggestionHint        = "tab to pick a suggestion"
	SuggestionPickingHint = "1-9 or enter to send, esc to type"
	suggestionMarker      = "› "
)

// =============================================================================
// WELCOME SCREEN COMPONENT
// =============================================================================

// Welcome is shown while the conversation holds only the greeting.
type Welcome struct {
	Greeting    string
	BotName     string
	Suggestions []string
	// Selected is the highlighted suggestion while picking, or -1.
	Selected int
	Width    int
	Height      int
	theme       *styles.Theme
}

// NewWelcome creates the welcome screen.
func NewWelcome(botName, greeting string, suggestions []string, theme *styles.Theme) *Welcome {
	return &Welcome{
		Greeting:    greeting,
		BotName:     botName,
		Suggestions: suggestions,
		Selected:    -1,
		Width:       80,
		theme:       theme,
	}
}

// View renders the welcome screen centered in Width x Height.
func (w *Welcome) View() string {
	width := w.Width
	if width < 24 {
		width = 24
	}
	textWidth := width - 4
	if textWidth > 60 {
		textWidth = 60
	}

	lines := []string{
		w.theme.BotAvatar.Render(util.Initial(w.BotName)),
		"",
		w.theme.WelcomeTitle.Render(WelcomeTitle),
		w.theme.WelcomeSub.Render(WelcomeSubtitle),
	}
	if w.Greeting != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(textWidth).Align(lipgloss.Center).Render(w.Greeting))
	}

	if len(w.Suggestions) > 0 {
		picking := w.Selected >= 0 && w.Selected < len(w.Suggestions)
		items := make([]string, len(w.Suggestions))
		for i, s := range w.Suggestions {
			text := w.theme.SuggestionText
			prefix := ""
			if picking {
				prefix = "  "
				if i == w.Selected {
					text = w.theme.SuggestionPick
					prefix = w.theme.SuggestionPick.Render(suggestionMarker)
				}
			}
			items[i] = prefix + w.theme.SuggestionKey.Render(strconv.Itoa(i+1)) + " " +
				text.Render(util.TruncateWidth(s, textWidth-8))
		}
		hint := SuggestionHint
		if picking {
			hint = SuggestionPickingHint
		}
		lines = append(lines, "",
			w.theme.SuggestionBox.Render(strings.Join(items, "\n")),
			w.theme.WelcomeSub.Render(hint))
	}

	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if w.Height <= 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}
	return lipgloss.Place(width, w.Height, lipgloss.Center, lipgloss.Center, block)
}
