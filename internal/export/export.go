// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/aria-tui/internal/model"
	"github.com/jeranaias/aria-tui/internal/storage"
	"github.com/jeranaias/aria-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to one file format.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(conv *storage.StoredConversation) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the exported content.
	MimeType() string
}

// Supported format names.
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formats lists the accepted format names.
var Formats = []string{FormatMarkdown, FormatHTML, FormatJSON}

var (
	// ErrUnknownFormat is returned by ForFormat for unsupported names.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrEmptyConversation is returned for nil or message-less conversations.
	ErrEmptyConversation = errors.New("conversation has no messages")
)

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are written. Default: "."
	OutputDir string

	// BotName labels bot messages. Default: "Bot"
	BotName string

	// IncludeTimestamps includes the clock time of every message.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark"). Default: "dark"
	Theme string

	// Now stamps file names. Default: time.Now
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		BotName:           model.SenderBot.DisplayName(),
		IncludeTimestamps: true,
		Theme:             "dark",
		Now:               time.Now,
	}
}

func (o *Options) withDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	opts := *o
	if opts.OutputDir == "" {
		opts.OutputDir = d.OutputDir
	}
	if opts.BotName == "" {
		opts.BotName = d.BotName
	}
	if opts.Theme == "" {
		opts.Theme = d.Theme
	}
	if opts.Now == nil {
		opts.Now = d.Now
	}
	return &opts
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ForFormat returns the exporter for a format name (md, markdown, html, json).
func ForFormat(name string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatMarkdown, "markdown":
		return NewMarkdownExporter(opts), nil
	case FormatHTML, "htm":
		return NewHTMLExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
	}
}

// ExportToFile exports a conversation to a new file in opts.OutputDir and
// returns its path.
func ExportToFile(conv *storage.StoredConversation, exporter Exporter, opts *Options) (string, error) {
	opts = opts.withDefaults()

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("conversation_%s_%s%s",
		sanitizeFilename(conv.Summary),
		opts.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// validate rejects conversations with nothing to export.
func validate(conv *storage.StoredConversation) error {
	if conv == nil || len(conv.Messages) == 0 {
		return ErrEmptyConversation
	}
	return nil
}

// maxFilenameRunes bounds the summary part of a file name.
const maxFilenameRunes = 50

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > maxFilenameRunes {
		runes = runes[:maxFilenameRunes]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "conversation"
	}
	return string(result)
}

// senderLabel returns the display label of msg.
func senderLabel(msg model.Message, botName string) string {
	if msg.IsBot() {
		return botName
	}
	return msg.Sender.DisplayName()
}
