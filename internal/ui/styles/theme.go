// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// NarrowWidth is the widest terminal treated as narrow. On narrow terminals
// the sidebar overlays the chat and closes itself after a send or clear.
const NarrowWidth = 80

// SidebarWidth is the fixed width of the open sidebar, border included.
const SidebarWidth = 28

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	HeaderToggle   lipgloss.Style
	Online         lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar        lipgloss.Style
	SidebarBrand   lipgloss.Style
	SidebarButton  lipgloss.Style
	SidebarSection lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarEmpty   lipgloss.Style
	SidebarFooter  lipgloss.Style
	SidebarMeta    lipgloss.Style
	Avatar         lipgloss.Style
	BotAvatar      lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble  lipgloss.Style
	BotBubble   lipgloss.Style
	ErrorBubble lipgloss.Style
	SenderName  lipgloss.Style
	Timestamp   lipgloss.Style
	InlineCode  lipgloss.Style
	Bold        lipgloss.Style

	// ==========================================================================
	// CODE BLOCK STYLES
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	CodeCopyHint  lipgloss.Style
	CodeLineNum   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputDisabled  lipgloss.Style
	InputHint      lipgloss.Style

	// ==========================================================================
	// WELCOME SCREEN STYLES
	// ==========================================================================

	WelcomeTitle   lipgloss.Style
	WelcomeSub     lipgloss.Style
	SuggestionBox  lipgloss.Style
	SuggestionKey  lipgloss.Style
	SuggestionText lipgloss.Style
	SuggestionPick lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	Typing           lipgloss.Style
	NewMessageButton lipgloss.Style
	Notice           lipgloss.Style
	ErrorText        lipgloss.Style
	HelpKey          lipgloss.Style
	HelpDesc         lipgloss.Style
}

// NewTheme creates a theme. mode is "auto", "dark" or "light"; anything
// else is treated as "auto".
func NewTheme(mode string) *Theme {
	isDark := termenv.HasDarkBackground()
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.HeaderToggle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Online = lipgloss.NewStyle().
		Foreground(Emerald)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1).
		Width(SidebarWidth - 1)

	t.SidebarBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.SidebarButton = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarSection = lipgloss.NewStyle().
		Foreground(TextMuted).
		Bold(true).
		MarginTop(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.SidebarFooter = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Avatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1)

	t.BotAvatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 1)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 2)

	t.BotBubble = lipgloss.NewStyle().
		Foreground(BotBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BotBubbleBorder).
		Padding(0, 1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		Background(ErrorBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.SenderName = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InlineCode = lipgloss.NewStyle().
		Foreground(InlineCodeFg).
		Background(InlineCodeBg)

	t.Bold = lipgloss.NewStyle().
		Bold(true)

	// Code blocks
	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 1).
		Bold(true)

	t.CodeCopyHint = lipgloss.NewStyle().
		Foreground(Cyan)

	t.CodeLineNum = lipgloss.NewStyle().
		Foreground(TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.InputDisabled = t.InputContainer.
		BorderForeground(Overlay)

	t.InputHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Welcome screen
	t.WelcomeTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.WelcomeSub = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SuggestionBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SuggestionKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.SuggestionText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SuggestionPick = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Status
	t.Typing = lipgloss.NewStyle().
		Foreground(Purple)

	t.NewMessageButton = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 1)

	t.Notice = lipgloss.NewStyle().
		Foreground(Amber)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// ChromaStyle returns the chroma style name matching the background.
func (t *Theme) ChromaStyle() string {
	if t.IsDark {
		return ChromaStyleDark
	}
	return ChromaStyleLight
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// IsNarrow reports whether the terminal is at or below NarrowWidth columns.
func (t *Theme) IsNarrow() bool {
	return IsNarrow(t.Width)
}

// IsNarrow reports whether width is at or below NarrowWidth columns.
func IsNarrow(width int) bool {
	return width <= NarrowWidth
}

// ValidMode reports whether mode is a recognised theme mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeAuto, ModeDark, ModeLight:
		return true
	}
	return false
}
