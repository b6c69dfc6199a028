// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the aria TUI.
//
// Components are plain structs with a View method (or pure render
// functions); they hold no tea.Model state and never perform I/O. The chat
// model in package chat composes them.
//
// # Components
//
//   - Header: title bar with the sidebar toggle and online indicator
//   - Sidebar: brand, "New chat", recent conversations, user footer
//   - MessageBubble: one message with avatar, name and timestamp
//   - CodeBlock: chroma-highlighted fenced block with a copy hint
//   - Welcome: empty-chat screen with numbered suggestions
//
// RenderSegments turns formatter output into styled text and is what
// MessageBubble uses for bot replies.
package components
