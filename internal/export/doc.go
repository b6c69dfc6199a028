// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes archived conversations to Markdown, HTML or JSON
// files for the "aria history export" command.
//
// Bot replies are split with the format package so fenced code and inline
// spans survive in every target format. Error replies are marked as such.
package export
