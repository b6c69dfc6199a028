// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen chat view of the TUI.
//
// Model is a tea.Model that owns the viewport, the input box, the sidebar
// and the welcome screen. Conversation state lives in a session.Machine; the
// model only mutates it from Update. Each query runs as a tea.Cmd and reports
// back with a ReplyMsg.
//
// # Files
//
//   - model.go: Model, Options, Init and Update
//   - view.go: layout and rendering
//   - keys.go: key bindings and help
//   - messages.go: tea.Msg types
//   - commands.go: tea.Cmd constructors (ask, archive, copy, config reload)
//   - scroll.go: auto-scroll heuristic
package chat
