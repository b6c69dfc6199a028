// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jeranaias/aria-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	botStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// =============================================================================
// TERMINAL DETECTION
// =============================================================================

// isTerminal reports whether stream is a terminal. Only *os.File can be.
func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when it is not a terminal.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownWrap caps the glamour word wrap.
const markdownWrap = 100

// renderMarkdown renders content with glamour.
// Returns the original content if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > markdownWrap {
		width = markdownWrap
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayReply writes a reply to w. Markdown is rendered only when asked
// for and w is a terminal so piped output stays verbatim.
func displayReply(w io.Writer, reply string, markdown bool) {
	if markdown && isTerminal(w) {
		io.WriteString(w, renderMarkdown(reply, terminalWidth(w, 80)))
		return
	}
	io.WriteString(w, reply)
	if reply == "" || reply[len(reply)-1] != '\n' {
		io.WriteString(w, "\n")
	}
}
