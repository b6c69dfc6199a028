// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format splits a bot reply into renderable segments.
package format

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultLanguage labels a fenced block whose opening fence has no tag.
const DefaultLanguage = "code"

var (
	// fenceRegex matches ```lang\n...``` non-greedily. The newline after the
	// tag is optional so that ```code``` on one line still counts.
	fenceRegex = regexp.MustCompile("(?s)```(\\w*)\\n?(.*?)```")

	// inlineRegex matches `code` or **bold**, whichever starts first.
	inlineRegex = regexp.MustCompile("`[^`]+`|\\*\\*[^*]+\\*\\*")
)

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// SegmentKind distinguishes prose from fenced code.
type SegmentKind int

const (
	SegmentText SegmentKind = iota // Prose with inline spans
	SegmentCode                    // Fenced code block
)

// String returns the string representation of the kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentCode:
		return "code"
	default:
		return "unknown"
	}
}

// SpanKind distinguishes the inline styles inside a line.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanCode
	SpanBold
)

// String returns the string representation of the kind.
func (k SpanKind) String() string {
	switch k {
	case SpanPlain:
		return "plain"
	case SpanCode:
		return "code"
	case SpanBold:
		return "bold"
	default:
		return "unknown"
	}
}

// Span is a run of text with a single inline style.
// Text never includes the backtick or asterisk markers.
type Span struct {
	Kind SpanKind
	Text string
}

// Line is one newline-delimited line of a text segment.
type Line []Span

// Segment is one renderable piece of a reply.
type Segment struct {
	Kind SegmentKind

	// Offset is the byte offset of the segment in the source text.
	// It is stable across re-renders and doubles as a render key.
	Offset int

	// Text segments
	Lines []Line

	// Code segments
	Language string
	Code     string
}

// =============================================================================
// FORMATTER
// =============================================================================

// Format splits text into an ordered list of text and code segments.
//
// Empty input yields a single empty text segment. An unterminated fence
// produces no code segment; its text stays in the surrounding text segment.
func Format(text string) []Segment {
	var segments []Segment
	lastIndex := 0

	for _, m := range fenceRegex.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if start > lastIndex {
			segments = append(segments, textSegment(text[lastIndex:start], lastIndex))
		}

		language := text[m[2]:m[3]]
		if language == "" {
			language = DefaultLanguage
		}
		segments = append(segments, Segment{
			Kind:     SegmentCode,
			Offset:   start,
			Language: language,
			Code:     strings.TrimRightFunc(text[m[4]:m[5]], unicode.IsSpace),
		})
		lastIndex = end
	}

	if lastIndex < len(text) {
		segments = append(segments, textSegment(text[lastIndex:], lastIndex))
	}

	if len(segments) == 0 {
		return []Segment{textSegment(text, 0)}
	}
	return segments
}

// textSegment builds a text segment, splitting on newlines first and inline
// markers second.
func textSegment(text string, offset int) Segment {
	rawLines := strings.Split(text, "\n")
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, Inline(raw))
	}
	return Segment{
		Kind:   SegmentText,
		Offset: offset,
		Lines:  lines,
	}
}

// Inline splits a single line into plain, code and bold spans.
// Matches are non-overlapping and found in one left-to-right pass.
func Inline(line string) Line {
	var spans Line
	lastIndex := 0

	for _, m := range inlineRegex.FindAllStringIndex(line, -1) {
		if m[0] > lastIndex {
			spans = append(spans, Span{Kind: SpanPlain, Text: line[lastIndex:m[0]]})
		}
		spans = append(spans, classify(line[m[0]:m[1]]))
		lastIndex = m[1]
	}

	if lastIndex < len(line) {
		spans = append(spans, Span{Kind: SpanPlain, Text: line[lastIndex:]})
	}
	return spans
}

// classify turns a matched token into a span. Tokens too short to hold
// content stay literal.
func classify(token string) Span {
	switch {
	case strings.HasPrefix(token, "`") && strings.HasSuffix(token, "`") && len(token) > 2:
		return Span{Kind: SpanCode, Text: token[1 : len(token)-1]}
	case strings.HasPrefix(token, "**") && strings.HasSuffix(token, "**") && len(token) > 4:
		return Span{Kind: SpanBold, Text: token[2 : len(token)-2]}
	default:
		return Span{Kind: SpanPlain, Text: token}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Text returns the visible text of the line.
func (l Line) Text() string {
	var sb strings.Builder
	for _, span := range l {
		sb.WriteString(span.Text)
	}
	return sb.String()
}

// PlainText returns the visible text of the segment without markers.
func (s Segment) PlainText() string {
	if s.Kind == SegmentCode {
		return s.Code
	}
	parts := make([]string, len(s.Lines))
	for i, line := range s.Lines {
		parts[i] = line.Text()
	}
	return strings.Join(parts, "\n")
}

// PlainText concatenates the visible text of all segments in order.
func PlainText(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.PlainText())
	}
	return sb.String()
}

// CodeBlocks returns only the code segments, in order.
func CodeBlocks(segments []Segment) []Segment {
	var blocks []Segment
	for _, seg := range segments {
		if seg.Kind == SegmentCode {
			blocks = append(blocks, seg)
		}
	}
	return blocks
}
