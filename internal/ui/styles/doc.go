// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the aria TUI.
//
// All colors are lipgloss.AdaptiveColor values so one palette serves light
// and dark terminals. NewTheme detects the background with termenv unless
// the configured mode forces one.
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	theme.SetSize(msg.Width, msg.Height)
//	if theme.IsNarrow() {
//	    // sidebar overlays the chat
//	}
package styles
