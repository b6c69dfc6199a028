// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client talks to the chat backend.
//
// The backend exposes a single endpoint, GET {baseURL}/chat?q=<query>, whose
// 2xx body is the reply text. A body that is a JSON string literal is decoded
// first; anything else is used verbatim.
//
// # Usage
//
//	c := client.New("http://localhost:8080").
//	    WithTimeout(60 * time.Second).
//	    WithLogger(logger)
//
//	reply, err := c.Ask(ctx, "what is a goroutine?")
//	if err != nil {
//	    text := client.ErrorText(err) // body, else cause, else fallback
//	}
//
// Every failure wraps ErrRequestFailed. There are no retries.
package client
