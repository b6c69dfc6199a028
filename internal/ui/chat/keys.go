// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Submit        key.Binding
	Newline       key.Binding
	ToggleSidebar key.Binding
	NewChat       key.Binding
	CopyLatest    key.Binding
	CopyBlock     key.Binding
	PickStart     key.Binding
	Suggestion    key.Binding
	PickPrev      key.Binding
	PickNext      key.Binding
	PickCancel    key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	LineUp        key.Binding
	LineDown      key.Binding
	Bottom        key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "sidebar"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n", "ctrl+l"),
			key.WithHelp("ctrl+n", "new chat"),
		),
		CopyLatest: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy code"),
		),
		CopyBlock: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("alt+1-9", "copy block n"),
		),
		PickStart: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "pick suggestion"),
		),
		// The bindings below apply only while picking a suggestion.
		Suggestion: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "send suggestion"),
		),
		PickPrev: key.NewBinding(
			key.WithKeys("up", "shift+tab"),
			key.WithHelp("↑", "previous suggestion"),
		),
		PickNext: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next suggestion"),
		),
		PickCancel: key.NewBinding(
			key.WithKeys("esc", "tab"),
			key.WithHelp("esc", "back to input"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		LineUp: key.NewBinding(
			key.WithKeys("ctrl+up", "shift+up"),
			key.WithHelp("ctrl+↑", "scroll up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("ctrl+down", "shift+down"),
			key.WithHelp("ctrl+↓", "scroll down"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+g", "ctrl+end"),
			key.WithHelp("ctrl+g", "jump to bottom"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewChat, k.ToggleSidebar, k.CopyLatest, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the expanded help, by group.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Newline, k.PickStart, k.Suggestion},
		{k.NewChat, k.ToggleSidebar, k.CopyLatest, k.CopyBlock},
		{k.PageUp, k.PageDown, k.LineUp, k.LineDown, k.Bottom},
		{k.Help, k.Quit},
	}
}

// digitOf returns the digit of a "1".."9" or "alt+1".."alt+9" key, or 0.
func digitOf(keyStr string) int {
	if len(keyStr) > 0 {
		c := keyStr[len(keyStr)-1]
		if c >= '1' && c <= '9' {
			return int(c - '0')
		}
	}
	return 0
}
