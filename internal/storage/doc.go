// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage archives cleared conversations for the "Recent" list.
//
// Each conversation is one JSON file named after its ID and written with
// util.AtomicWriteFile. The store keeps at most MaxConversations files,
// deleting the least recently updated ones first.
//
// # Key Types
//
//   - ConversationStore: File-backed archive
//   - StoredConversation: Serializable conversation with metadata
//   - ConversationMeta: Lightweight metadata for listing
//
// # Usage
//
//	store, err := storage.NewConversationStore(dir, 50)
//	id, err := store.Save(storage.FromMessages(messages))
//
//	metas, err := store.List() // newest first
//	conv, err := store.Find("conv_3f2a") // ID, unique prefix, or 1-based index
//
// # Storage Location
//
// Conversations are stored in ~/.aria/conversations/ unless history.dir is set.
package storage
