// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the aria commands together.
//
// Running aria without a command starts the terminal chat UI. The
// subcommands reuse the same client, config and archive:
//
//	aria                      Start the chat UI
//	aria ask "question"       Ask a single question and print the reply
//	aria repl                 Line-based chat with input history
//	aria serve                Run the reference /chat backend
//	aria history list         List archived conversations
//	aria config show          Print the effective configuration
//	aria version              Print version information
//
// Global flags:
//
//	--config PATH     Use this config file instead of ~/.aria/config.toml
//	--api-url URL     Override api.base_url
//	--log-level LVL   Override log.level (debug, info, warn, error)
package cli
