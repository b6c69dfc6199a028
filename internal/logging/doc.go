// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap loggers used across aria.
//
// The TUI owns the terminal, so it logs to a file; one-shot commands and the
// backend log to stderr. Both use zap's production JSON encoding with ISO8601
// timestamps.
//
// # Usage
//
//	logger, err := logging.New(logging.Options{Level: "debug", File: path})
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
package logging
