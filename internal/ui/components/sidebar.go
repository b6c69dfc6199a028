// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aria-tui/internal/ui/styles"
	"github.com/jeranaias/aria-tui/internal/util"
)

// Sidebar defaults.
const (
	DefaultBrand    = "Aria AI"
	DefaultPlan     = "Groq · Free"
	MaxRecentShown  = 8
	noRecentHistory = "No conversations yet"
)

// =============================================================================
// SIDEBAR COMPONENT
// =============================================================================

// Sidebar is the collapsible panel on the left of the chat.
type Sidebar struct {
	Brand    string
	UserName string
	Plan     string
	// Recent holds conversation titles, newest first.
	Recent []string
	Height int
	theme  *styles.Theme
}

// NewSidebar creates a sidebar with default labels.
func NewSidebar(userName string, theme *styles.Theme) *Sidebar {
	return &Sidebar{
		Brand:    DefaultBrand,
		UserName: userName,
		Plan:     DefaultPlan,
		Height:   24,
		theme:    theme,
	}
}

// Width returns the rendered width of the sidebar.
func (s *Sidebar) Width() int {
	return styles.SidebarWidth
}

// View renders the sidebar at its fixed width and the configured height.
func (s *Sidebar) View() string {
	inner := styles.SidebarWidth - 3

	top := []string{
		s.theme.SidebarBrand.Render("✦ " + s.Brand),
		"",
		s.theme.SidebarButton.Width(inner - 2).Render("+ New Chat  ctrl+n"),
		s.theme.SidebarSection.Render("Recent"),
	}

	if len(s.Recent) == 0 {
		top = append(top, s.theme.SidebarEmpty.Render(noRecentHistory))
	}
	for i, title := range s.Recent {
		if i >= MaxRecentShown {
			break
		}
		top = append(top, s.theme.SidebarItem.Render(util.TruncateWidth("› "+title, inner)))
	}

	footer := s.theme.SidebarFooter.Width(inner).Render(lipgloss.JoinHorizontal(lipgloss.Top,
		s.theme.Avatar.Render(util.Initial(s.UserName)),
		" ",
		lipgloss.JoinVertical(lipgloss.Left,
			util.TruncateWidth(s.UserName, inner-4),
			s.theme.SidebarMeta.Render(s.Plan),
		),
	))

	body := strings.Join(top, "\n")
	gap := s.Height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap < 1 {
		gap = 1
	}

	return s.theme.Sidebar.
		Height(s.Height).
		Render(body + strings.Repeat("\n", gap) + footer)
}
