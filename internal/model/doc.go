// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types shared by the chat view, the
// line-mode commands and the history store.
//
// # Key Types
//
//   - Message: Immutable chat message (numeric ID, sender, text, clock time, error flag)
//   - Sender: Message author enumeration (user, bot)
//   - Conversation: Append-only, ordered list of messages with a greeting
//
// # Usage
//
// Create a conversation and append messages:
//
//	conv := model.NewConversation("Hello! How can I help?")
//	conv.Append(model.SenderUser, "What is Go?", false)
//	conv.Append(model.SenderBot, "A programming language.", false)
//
// Reset the conversation for a new chat:
//
//	conv.Reset("Hello! How can I help?")
package model
