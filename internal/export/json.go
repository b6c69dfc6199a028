// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/aria-tui/internal/storage"
)

// JSONExporter exports the stored conversation unchanged, so the file can be
// copied back into the history directory.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter. Options do not apply.
func NewJSONExporter(opts *Options) *JSONExporter {
	return &JSONExporter{}
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}
	return json.MarshalIndent(conv, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
