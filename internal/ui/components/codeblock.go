// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/aria-tui/internal/format"
	"github.com/jeranaias/aria-tui/internal/ui/styles"
)

// MaxCopyShortcut is the highest code block number with an alt+N shortcut.
const MaxCopyShortcut = 9

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a fenced code block ready to render.
type CodeBlock struct {
	// Number is the 1-based position of the block in the conversation.
	// Zero hides the copy hint.
	Number   int
	Language string
	Code     string
	MaxWidth int
	theme    *styles.Theme
}

// NewCodeBlock creates a code block from a code segment.
func NewCodeBlock(seg format.Segment, number int, theme *styles.Theme) CodeBlock {
	return CodeBlock{
		Number:   number,
		Language: seg.Language,
		Code:     seg.Code,
		MaxWidth: 80,
		theme:    theme,
	}
}

// CopyHint returns the key hint shown in the block header. Blocks past
// MaxCopyShortcut have no shortcut of their own and get no hint.
func (c CodeBlock) CopyHint() string {
	if c.Number <= 0 || c.Number > MaxCopyShortcut {
		return ""
	}
	return "alt+" + strconv.Itoa(c.Number) + " copy"
}

// Render renders the code block with a language badge, line numbers and
// syntax highlighting.
func (c CodeBlock) Render() string {
	highlighted := highlightCode(c.Code, c.Language, c.theme.ChromaStyle(), c.theme.ColorProfile)
	lines := strings.Split(highlighted, "\n")

	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = c.theme.CodeLineNum.Render(strconv.Itoa(i+1)) + line
	}

	header := c.theme.CodeLangBadge.Render(c.Language)
	if hint := c.CopyHint(); hint != "" {
		header += " " + c.theme.CodeCopyHint.Render(hint)
	}

	maxWidth := c.MaxWidth
	if maxWidth < 20 {
		maxWidth = 20
	}

	return c.theme.CodeBlock.
		MaxWidth(maxWidth).
		Render(header + "\n" + strings.Join(rendered, "\n"))
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting using chroma. It returns the
// input unchanged if tokenizing or formatting fails.
func highlightCode(code, language, styleName string, profile termenv.Profile) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(formatterFor(profile))
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// formatterFor picks the chroma terminal formatter for a color profile.
func formatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return "noop"
	}
}

// =============================================================================
// SEGMENT RENDERER
// =============================================================================

// RenderSegments renders formatter output at the given width. Code blocks
// are numbered from firstBlock; the number after the last block is returned
// so that numbering can continue across messages.
func RenderSegments(segments []format.Segment, width, firstBlock int, theme *styles.Theme) (string, int) {
	if width < 10 {
		width = 10
	}

	next := firstBlock
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg.Kind {
		case format.SegmentCode:
			block := NewCodeBlock(seg, next, theme)
			block.MaxWidth = width
			parts = append(parts, block.Render())
			next++
		default:
			if strings.TrimSpace(seg.PlainText()) == "" && len(segments) > 1 {
				continue
			}
			text := renderTextSegment(seg, theme)
			parts = append(parts, lipgloss.NewStyle().Width(width).Render(text))
		}
	}
	return strings.Join(parts, "\n"), next
}

// renderTextSegment styles the inline spans of each line.
func renderTextSegment(seg format.Segment, theme *styles.Theme) string {
	lines := make([]string, len(seg.Lines))
	for i, line := range seg.Lines {
		var sb strings.Builder
		for _, span := range line {
			switch span.Kind {
			case format.SpanCode:
				sb.WriteString(theme.InlineCode.Render(span.Text))
			case format.SpanBold:
				sb.WriteString(theme.Bold.Render(span.Text))
			default:
				sb.WriteString(span.Text)
			}
		}
		lines[i] = sb.String()
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
