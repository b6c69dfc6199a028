// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upstream is a minimal client for OpenAI-compatible chat-completions
// APIs. The reference backend uses it to forward each query to Groq.
//
// # Usage
//
//	c := upstream.NewClient(os.Getenv("GROQ_API_KEY")).
//	    WithModel("llama-3.1-8b-instant").
//	    WithLogger(logger)
//
//	text, err := c.Complete(ctx, "what is a goroutine?")
//	if errors.Is(err, upstream.ErrMalformedResponse) {
//	    // 2xx but the body was not a completion
//	}
package upstream
