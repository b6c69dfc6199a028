// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for aria.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// a .env file, environment variable overrides, validation and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Chat backend the client talks to
//   - UIConfig: Bot name, greeting, suggestions, sidebar and theme
//   - HistoryConfig: Archive of cleared conversations
//   - ServerConfig, UpstreamConfig: The reference backend run by "aria serve"
//   - Watcher: fsnotify-based reload of the config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (--api-url, --log-level)
//   - Environment variables (ARIA_*, GROQ_API_KEY), including a .env file
//   - ~/.aria/config.toml
//   - ~/.aria/config.json
//   - Built-in defaults (BuildBaseURL, when set at link time)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c := client.New(cfg.API.BaseURL).WithTimeout(cfg.API.Timeout())
package config
