// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server is the reference backend the chat client talks to.
//
// # Endpoints
//
//   - GET /chat?q=<query> - forwards the query to the upstream model, replies text/plain
//   - GET /health         - JSON liveness and counters
//
// # Middleware
//
// Requests pass through chi's RequestID and Timeout, panic recovery, a zap
// request log, go-chi/cors (every origin by default) and a per-IP token
// bucket from golang.org/x/time/rate.
//
// # Usage
//
//	srv := server.New(server.OptionsFromConfig(cfg.Server), completer, logger)
//	if err := srv.ListenAndServe(ctx); err != nil {
//		logger.Fatal("server stopped", zap.Error(err))
//	}
package server
