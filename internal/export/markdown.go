// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/aria-tui/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown with YAML front matter.
// Bot replies are already Markdown and are written unchanged.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	return &MarkdownExporter{options: opts.withDefaults()}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: \"%s\"\n", escapeYAML(conv.Summary)))
	sb.WriteString(fmt.Sprintf("id: %s\n", conv.ID))
	sb.WriteString(fmt.Sprintf("created: %s\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(conv.Messages)))
	sb.WriteString("---\n\n")

	sb.WriteString("# " + escapeMarkdown(conv.Summary) + "\n\n")

	for _, msg := range conv.Messages {
		label := senderLabel(msg, e.options.BotName)
		if e.options.IncludeTimestamps && msg.Time != "" {
			sb.WriteString(fmt.Sprintf("### %s · %s\n\n", label, msg.Time))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		switch {
		case msg.IsError:
			for _, line := range strings.Split(msg.Text, "\n") {
				sb.WriteString("> " + line + "\n")
			}
		default:
			sb.WriteString(msg.Text + "\n")
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would change a heading.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"#", `\#`,
		"\n", " ",
	)
	return replacer.Replace(s)
}

// escapeYAML escapes a value for a double-quoted YAML scalar.
func escapeYAML(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return replacer.Replace(s)
}
