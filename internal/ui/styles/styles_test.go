// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	if !dark.IsDark {
		t.Error("dark mode should set IsDark")
	}
	if dark.ChromaStyle() != ChromaStyleDark {
		t.Errorf("ChromaStyle() = %q, want %q", dark.ChromaStyle(), ChromaStyleDark)
	}

	light := NewTheme(" LIGHT ")
	if light.IsDark {
		t.Error("light mode should clear IsDark")
	}
	if light.ChromaStyle() != ChromaStyleLight {
		t.Errorf("ChromaStyle() = %q, want %q", light.ChromaStyle(), ChromaStyleLight)
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(ModeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Sidebar", theme.Sidebar},
		{"UserBubble", theme.UserBubble},
		{"BotBubble", theme.BotBubble},
		{"ErrorBubble", theme.ErrorBubble},
		{"CodeBlock", theme.CodeBlock},
		{"InputContainer", theme.InputContainer},
		{"SuggestionBox", theme.SuggestionBox},
		{"SuggestionPick", theme.SuggestionPick},
		{"NewMessageButton", theme.NewMessageButton},
	}

	for _, s := range styles {
		if s.style.Render("test") == "" {
			t.Errorf("%s style should render", s.name)
		}
	}
}

func TestIsNarrow(t *testing.T) {
	tests := []struct {
		width int
		want  bool
	}{
		{40, true},
		{NarrowWidth, true},
		{NarrowWidth + 1, false},
		{200, false},
	}

	theme := NewTheme(ModeDark)
	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		if got := theme.IsNarrow(); got != tc.want {
			t.Errorf("IsNarrow() at width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}

func TestValidMode(t *testing.T) {
	for _, mode := range []string{ModeAuto, ModeDark, ModeLight} {
		if !ValidMode(mode) {
			t.Errorf("ValidMode(%q) = false", mode)
		}
	}
	if ValidMode("neon") {
		t.Error("ValidMode(neon) = true")
	}
}
