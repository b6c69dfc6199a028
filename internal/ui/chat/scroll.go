// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/viewport"
)

// NearBottomRows is how close to the bottom, in rows, the viewport must be
// for a new bot message to scroll it down.
const NearBottomRows = 6

// DistanceFromBottom returns how many rows of content lie below the visible
// area.
func DistanceFromBottom(totalLines, yOffset, height int) int {
	d := totalLines - (yOffset + height)
	if d < 0 {
		return 0
	}
	return d
}

// IsNearBottom reports whether vp is within NearBottomRows of the bottom.
func IsNearBottom(vp viewport.Model) bool {
	return DistanceFromBottom(vp.TotalLineCount(), vp.YOffset, vp.Height) < NearBottomRows
}

// ShouldAutoScroll decides whether appending a message jumps to the bottom:
// always for the user's own message, otherwise only when the reader was
// already near the bottom before the update.
func ShouldAutoScroll(newestIsUser, wasNearBottom bool) bool {
	return newestIsUser || wasNearBottom
}
