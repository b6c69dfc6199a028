// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "empty input",
			input: "",
			want: []Segment{
				{Kind: SegmentText, Offset: 0, Lines: []Line{nil}},
			},
		},
		{
			name:  "plain text",
			input: "hello world",
			want: []Segment{
				{Kind: SegmentText, Lines: []Line{{{Kind: SpanPlain, Text: "hello world"}}}},
			},
		},
		{
			name:  "fence between text",
			input: "before ```js\nconsole.log(1)\n``` after",
			want: []Segment{
				{Kind: SegmentText, Offset: 0, Lines: []Line{{{Kind: SpanPlain, Text: "before "}}}},
				{Kind: SegmentCode, Offset: 7, Language: "js", Code: "console.log(1)"},
				{Kind: SegmentText, Offset: 31, Lines: []Line{{{Kind: SpanPlain, Text: " after"}}}},
			},
		},
		{
			name:  "inline code and bold",
			input: "a `b` **c**",
			want: []Segment{
				{Kind: SegmentText, Lines: []Line{{
					{Kind: SpanPlain, Text: "a "},
					{Kind: SpanCode, Text: "b"},
					{Kind: SpanPlain, Text: " "},
					{Kind: SpanBold, Text: "c"},
				}}},
			},
		},
		{
			name:  "fence without language",
			input: "```\nls -la\n```",
			want: []Segment{
				{Kind: SegmentCode, Language: DefaultLanguage, Code: "ls -la"},
			},
		},
		{
			name:  "trailing whitespace trimmed from code",
			input: "```go\nfmt.Println()\n\n   \n```",
			want: []Segment{
				{Kind: SegmentCode, Language: "go", Code: "fmt.Println()"},
			},
		},
		{
			name:  "unterminated fence stays text",
			input: "x ```go\nfmt",
			want: []Segment{
				{Kind: SegmentText, Lines: []Line{
					{{Kind: SpanPlain, Text: "x ```go"}},
					{{Kind: SpanPlain, Text: "fmt"}},
				}},
			},
		},
		{
			name:  "empty markers are literal",
			input: "`` and ****",
			want: []Segment{
				{Kind: SegmentText, Lines: []Line{{{Kind: SpanPlain, Text: "`` and ****"}}}},
			},
		},
		{
			name:  "multiple lines",
			input: "one\n\ntwo **b**",
			want: []Segment{
				{Kind: SegmentText, Lines: []Line{
					{{Kind: SpanPlain, Text: "one"}},
					nil,
					{{Kind: SpanPlain, Text: "two "}, {Kind: SpanBold, Text: "b"}},
				}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Format(tc.input)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Format(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestFormat_PlainTextIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"multi\nline\ntext",
		"punctuation: a*b, c_d, e-f!",
		"  leading and trailing  ",
		"unicode: héllo wörld ✓",
	}

	for _, input := range inputs {
		segments := Format(input)
		if len(segments) != 1 {
			t.Fatalf("Format(%q) returned %d segments, want 1", input, len(segments))
		}
		if got := PlainText(segments); got != input {
			t.Errorf("PlainText(Format(%q)) = %q", input, got)
		}
	}
}

func TestFormat_CodeSegmentsMatchFencePairs(t *testing.T) {
	for pairs := 0; pairs <= 5; pairs++ {
		input := strings.Repeat("text\n```\nbody\n```\n", pairs)

		if got := len(CodeBlocks(Format(input))); got != pairs {
			t.Errorf("balanced input with %d pairs: got %d code segments", pairs, got)
		}

		// An extra unmatched fence adds nothing.
		odd := input + "```\ntrailing"
		if got := len(CodeBlocks(Format(odd))); got != pairs {
			t.Errorf("odd input with %d pairs: got %d code segments", pairs, got)
		}
	}
}

func TestFormat_PreservesOrder(t *testing.T) {
	input := "a\n```py\nx = 1\n```\nb\n```sh\necho\n```\nc"
	segments := Format(input)

	kinds := make([]SegmentKind, len(segments))
	for i, seg := range segments {
		kinds[i] = seg.Kind
	}
	want := []SegmentKind{SegmentText, SegmentCode, SegmentText, SegmentCode, SegmentText}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("segment kinds mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i < len(segments); i++ {
		if segments[i].Offset <= segments[i-1].Offset {
			t.Errorf("segment %d offset %d not after %d", i, segments[i].Offset, segments[i-1].Offset)
		}
	}

	blocks := CodeBlocks(segments)
	if blocks[0].Language != "py" || blocks[1].Language != "sh" {
		t.Errorf("languages = %q, %q", blocks[0].Language, blocks[1].Language)
	}
}

// =============================================================================
// INLINE TESTS
// =============================================================================

func TestInline(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Line
	}{
		{"empty", "", nil},
		{"code only", "`x`", Line{{Kind: SpanCode, Text: "x"}}},
		{"bold only", "**x**", Line{{Kind: SpanBold, Text: "x"}}},
		{
			name: "non greedy",
			line: "`a` and `b`",
			want: Line{
				{Kind: SpanCode, Text: "a"},
				{Kind: SpanPlain, Text: " and "},
				{Kind: SpanCode, Text: "b"},
			},
		},
		{
			name: "bold wins when it starts first",
			line: "**a `b` c**",
			want: Line{{Kind: SpanBold, Text: "a `b` c"}},
		},
		{
			name: "single asterisks are literal",
			line: "*a* b",
			want: Line{{Kind: SpanPlain, Text: "*a* b"}},
		},
		{
			name: "unbalanced backtick",
			line: "a ` b",
			want: Line{{Kind: SpanPlain, Text: "a ` b"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Inline(tc.line)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Inline(%q) mismatch (-want +got):\n%s", tc.line, diff)
			}
		})
	}
}

func TestSegment_PlainText(t *testing.T) {
	segments := Format("see `x` and **y**\nnext")
	if got, want := segments[0].PlainText(), "see x and y\nnext"; got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}

	code := Format("```go\nfunc main() {}\n```")[0]
	if got := code.PlainText(); got != "func main() {}" {
		t.Errorf("code PlainText() = %q", got)
	}
}

func TestKindStrings(t *testing.T) {
	if SegmentText.String() != "text" || SegmentCode.String() != "code" {
		t.Error("unexpected SegmentKind strings")
	}
	if SpanPlain.String() != "plain" || SpanCode.String() != "code" || SpanBold.String() != "bold" {
		t.Error("unexpected SpanKind strings")
	}
	if SegmentKind(99).String() != "unknown" || SpanKind(99).String() != "unknown" {
		t.Error("out of range kinds should be unknown")
	}
}
