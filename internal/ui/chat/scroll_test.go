// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
)

func TestDistanceFromBottom(t *testing.T) {
	tests := []struct {
		name                  string
		total, offset, height int
		want                  int
	}{
		{"content shorter than view", 5, 0, 20, 0},
		{"at bottom", 100, 80, 20, 0},
		{"one row up", 100, 79, 20, 1},
		{"at top", 100, 0, 20, 80},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DistanceFromBottom(tc.total, tc.offset, tc.height); got != tc.want {
				t.Errorf("DistanceFromBottom(%d, %d, %d) = %d, want %d", tc.total, tc.offset, tc.height, got, tc.want)
			}
		})
	}
}

func TestShouldAutoScroll(t *testing.T) {
	tests := []struct {
		newestIsUser, wasNear, want bool
	}{
		{true, true, true},
		{true, false, true},
		{false, true, true},
		{false, false, false},
	}
	for _, tc := range tests {
		if got := ShouldAutoScroll(tc.newestIsUser, tc.wasNear); got != tc.want {
			t.Errorf("ShouldAutoScroll(%v, %v) = %v, want %v", tc.newestIsUser, tc.wasNear, got, tc.want)
		}
	}
}

func TestIsNearBottom(t *testing.T) {
	vp := viewport.New(40, 10)
	vp.SetContent(strings.Repeat("line\n", 49) + "line")

	vp.GotoBottom()
	if !IsNearBottom(vp) {
		t.Error("bottom should be near bottom")
	}

	vp.SetYOffset(40 - (NearBottomRows - 1))
	if !IsNearBottom(vp) {
		t.Errorf("%d rows up should still be near bottom", NearBottomRows-1)
	}

	vp.SetYOffset(40 - NearBottomRows)
	if IsNearBottom(vp) {
		t.Errorf("%d rows up should not be near bottom", NearBottomRows)
	}

	vp.GotoTop()
	if IsNearBottom(vp) {
		t.Error("top should not be near bottom")
	}
}
