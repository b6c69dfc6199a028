// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "updated" {
		t.Errorf("Content not updated: got %q", string(content))
	}
}

func TestAtomicWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		if err := AtomicWriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0644); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestAtomicWriteFileWithDir_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newdir", "test.txt")

	if err := AtomicWriteFileWithDir(path, []byte("test"), 0600, 0700); err != nil {
		t.Fatalf("AtomicWriteFileWithDir failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("File not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %o, want 600", info.Mode().Perm())
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		input    string
		maxRunes int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"héllo wörld", 7, "héll..."},
	}

	for _, tc := range testCases {
		result := TruncateRunes(tc.input, tc.maxRunes)
		if result != tc.expected {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, result, tc.expected)
		}
	}
}

func TestStringWidth(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"hello", 5},
		{"", 0},
		{"日本語", 6},       // 3 CJK chars
		{"hello世界", 9},        // 5 ASCII + 2 CJK
		{"こんにちは", 10}, // 5 hiragana
	}

	for _, tc := range testCases {
		if result := StringWidth(tc.input); result != tc.expected {
			t.Errorf("StringWidth(%q) = %d, want %d", tc.input, result, tc.expected)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"ascii short", "hello", 10, "hello"},
		{"ascii exact", "hello", 5, "hello"},
		{"ascii truncate", "hello world", 8, "hello..."},
		{"tiny width", "hello", 2, "he"},
		{"zero width", "hello", 0, ""},
		{"cjk truncate", "日本語日本", 7, "日本..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TruncateWidth(tc.input, tc.maxWidth)
			if result != tc.expected {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tc.input, tc.maxWidth, result, tc.expected)
			}
			if StringWidth(result) > tc.maxWidth {
				t.Errorf("result %q is %d cells wide, max %d", result, StringWidth(result), tc.maxWidth)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight short = %q", got)
	}
	if got := PadRight("abcdefgh", 6); got != "abc..." {
		t.Errorf("PadRight long = %q", got)
	}
	if got := PadRight("日本", 6); StringWidth(got) != 6 {
		t.Errorf("PadRight cjk width = %d", StringWidth(got))
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("日本語"); got != 3 {
		t.Errorf("RuneLen = %d, want 3", got)
	}
	if got := RuneLen(""); got != 0 {
		t.Errorf("RuneLen empty = %d", got)
	}
}

func TestInitial(t *testing.T) {
	testCases := map[string]string{
		"user":    "U",
		"  aria ": "A",
		"":        "?",
		"élan": "É",
	}
	for input, expected := range testCases {
		if got := Initial(input); got != expected {
			t.Errorf("Initial(%q) = %q, want %q", input, got, expected)
		}
	}
}
