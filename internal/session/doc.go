// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives a single chat conversation through its
// send/receive cycle.
//
// # Key Types
//
//   - Machine: Guarded Idle/Sending state machine over a model.Conversation
//   - State: The current phase of the machine
//   - Settlement: What a settled request appended
//
// # Usage
//
//	m := session.New("Hi! How can I help?")
//	query, err := m.Submit("  what is a goroutine?  ")
//	if err != nil {
//	    // ErrBusy or ErrEmptyInput; nothing was appended
//	}
//	reply, askErr := c.Ask(ctx, query)
//	if askErr != nil {
//	    m.Fail(query, client.ErrorText(askErr))
//	} else {
//	    m.Succeed(query, reply)
//	}
//
// Clear resets the conversation to its greeting without aborting an
// in-flight request. A reply that settles after Clear is still appended.
package session
