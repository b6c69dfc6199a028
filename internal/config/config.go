// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/aria-tui/internal/util"
)

// BuildBaseURL replaces the default backend URL when set at link time:
//
//	go build -ldflags "-X github.com/jeranaias/aria-tui/internal/config.BuildBaseURL=https://chat.example.com"
var BuildBaseURL string

const (
	defaultBaseURL     = "http://localhost:8080"
	defaultUpstreamURL = "https://api.groq.com/openai/v1"
	defaultModel       = "llama-3.1-8b-instant"

	// MaxSuggestions is the number of suggestions reachable with digit keys
	// while picking.
	MaxSuggestions = 9
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aria configuration.
type Config struct {
	// Chat backend
	API APIConfig `toml:"api" json:"api"`

	// Terminal UI
	UI UIConfig `toml:"ui" json:"ui"`

	// Conversation archive
	History HistoryConfig `toml:"history" json:"history"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`

	// Reference backend ("aria serve")
	Server   ServerConfig   `toml:"server" json:"server"`
	Upstream UpstreamConfig `toml:"upstream" json:"upstream"`
}

// APIConfig describes the chat backend.
type APIConfig struct {
	// BaseURL is the scheme and host of the backend; /chat is appended.
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds a single request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// Timeout returns TimeoutSecs as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// BotName is shown in the header and on bot bubbles.
	BotName string `toml:"bot_name" json:"bot_name"`
	// UserName is shown in the sidebar footer.
	UserName string `toml:"user_name" json:"user_name"`
	// Greeting is the first bot message of every conversation.
	Greeting string `toml:"greeting" json:"greeting"`
	// Suggestions are the prompts offered on the welcome screen.
	Suggestions []string `toml:"suggestions" json:"suggestions"`
	// SidebarOpen forces the initial sidebar state. Unset means open on wide terminals.
	SidebarOpen *bool `toml:"sidebar_open,omitempty" json:"sidebar_open,omitempty"`
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps prints the clock time on every bubble.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
}

// HistoryConfig controls the archive of cleared conversations.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Dir overrides ~/.aria/conversations.
	Dir string `toml:"dir" json:"dir"`
	// MaxConversations caps the archive; 0 means unlimited.
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
	// File receives TUI logs; empty means ~/.aria/aria.log.
	File string `toml:"file" json:"file"`
}

// ServerConfig configures the reference backend.
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
	// AllowedOrigins for CORS; "*" allows every origin.
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the token bucket size.
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// UpstreamConfig configures the chat-completions API behind the backend.
type UpstreamConfig struct {
	BaseURL     string `toml:"base_url" json:"base_url"`
	Model       string `toml:"model" json:"model"`
	APIKey      string `toml:"api_key" json:"api_key"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
}

// Timeout returns TimeoutSecs as a duration.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultServerAddr is where the reference backend listens.
const DefaultServerAddr = ":8080"

// DefaultGreeting is the first bot message of every conversation.
const DefaultGreeting = "Hello! I'm Aria, powered by Groq + Spring Boot. How can I help you today?"

// DefaultSuggestions are offered on the welcome screen.
var DefaultSuggestions = []string{
	"What can you help me with?",
	"Explain quantum computing simply",
	"Write a Python hello world",
	"How does Spring Boot work?",
}

// Default returns a Config with sensible default values.
func Default() *Config {
	baseURL := defaultBaseURL
	if BuildBaseURL != "" {
		baseURL = BuildBaseURL
	}

	return &Config{
		API: APIConfig{
			BaseURL:     baseURL,
			TimeoutSecs: 60,
		},

		UI: UIConfig{
			BotName:        "Aria",
			UserName:       "You",
			Greeting:       DefaultGreeting,
			Suggestions:    append([]string(nil), DefaultSuggestions...),
			Theme:          "auto",
			ShowTimestamps: true,
		},

		History: HistoryConfig{
			Enabled:          true,
			MaxConversations: 50,
		},

		Log: LogConfig{
			Level: "info",
		},

		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			AllowedOrigins: []string{"*"},
			RateLimit:      2,
			RateBurst:      5,
		},

		Upstream: UpstreamConfig{
			BaseURL:     defaultUpstreamURL,
			Model:       defaultModel,
			TimeoutSecs: 60,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the aria configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".aria"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// HistoryDir returns the directory for archived conversations.
func (c *Config) HistoryDir() (string, error) {
	if c.History.Dir != "" {
		return c.History.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversations"), nil
}

// LogFile returns the file TUI logs are written to.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aria.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// A .env file and environment overrides are applied last.
func Load() (*Config, error) {
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies the .env file, environment overrides and validation.
func finish(cfg *Config) error {
	LoadDotEnv()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadDotEnv loads ./.env and ~/.aria/.env into the process environment.
// Variables that are already set win; missing files are ignored.
func LoadDotEnv() {
	paths := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// fillDefaults fills in any missing values with defaults.
// Booleans are left alone since false is a meaningful setting.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// API
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = defaults.API.TimeoutSecs
	}

	// UI
	if cfg.UI.BotName == "" {
		cfg.UI.BotName = defaults.UI.BotName
	}
	if cfg.UI.UserName == "" {
		cfg.UI.UserName = defaults.UI.UserName
	}
	if cfg.UI.Greeting == "" {
		cfg.UI.Greeting = defaults.UI.Greeting
	}
	if cfg.UI.Suggestions == nil {
		cfg.UI.Suggestions = defaults.UI.Suggestions
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	// Server
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = defaults.Server.RateBurst
	}

	// Upstream
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = defaults.Upstream.BaseURL
	}
	if cfg.Upstream.Model == "" {
		cfg.Upstream.Model = defaults.Upstream.Model
	}
	if cfg.Upstream.TimeoutSecs == 0 {
		cfg.Upstream.TimeoutSecs = defaults.Upstream.TimeoutSecs
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// The file is 0600 since it may hold the upstream API key.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# aria configuration file\n")
	sb.WriteString("# Generated by aria - edit with care\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateHTTPURL(c.API.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: err.Error()})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.API.TimeoutSecs),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if len(c.UI.Suggestions) > MaxSuggestions {
		errs = append(errs, ValidationError{
			Field:   "ui.suggestions",
			Message: fmt.Sprintf("at most %d suggestions are supported, got %d", MaxSuggestions, len(c.UI.Suggestions)),
		})
	}
	for i, s := range c.UI.Suggestions {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ui.suggestions[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	if c.History.MaxConversations < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.max_conversations",
			Message: "must not be negative",
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Message: "must not be empty"})
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, ValidationError{Field: "server.rate_limit", Message: "must not be negative"})
	}
	if c.Server.RateBurst < 1 {
		errs = append(errs, ValidationError{Field: "server.rate_burst", Message: "must be at least 1"})
	}

	if err := validateHTTPURL(c.Upstream.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "upstream.base_url", Message: err.Error()})
	}
	if c.Upstream.TimeoutSecs < 1 || c.Upstream.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "upstream.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Upstream.TimeoutSecs),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateHTTPURL checks that raw is an absolute http(s) URL.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL '%s': %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL '%s' must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL '%s' has no host", raw)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - ARIA_API_URL: overrides api.base_url
//   - ARIA_API_TIMEOUT: overrides api.timeout_secs
//   - ARIA_THEME: overrides ui.theme
//   - ARIA_LOG_LEVEL: overrides log.level
//   - ARIA_HISTORY_DIR: overrides history.dir
//   - ARIA_SERVER_ADDR: overrides server.addr
//   - ARIA_UPSTREAM_URL: overrides upstream.base_url
//   - ARIA_UPSTREAM_MODEL: overrides upstream.model
//   - GROQ_API_KEY: overrides upstream.api_key
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ARIA_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ARIA_API_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("ARIA_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("ARIA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ARIA_HISTORY_DIR"); v != "" {
		c.History.Dir = v
	}
	if v := os.Getenv("ARIA_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ARIA_UPSTREAM_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("ARIA_UPSTREAM_MODEL"); v != "" {
		c.Upstream.Model = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
// Keys match the TOML names.
func (c *Config) Get(key string) (interface{}, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Ptr {
				if field.IsNil() {
					return nil, nil
				}
				return field.Elem().Interface(), nil
			}
			return field.Interface(), nil
		}

		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds the struct field whose toml tag name equals name.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// =============================================================================
// CLONE / STRING
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.UI.Suggestions = append([]string(nil), c.UI.Suggestions...)
	clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	if c.UI.SidebarOpen != nil {
		open := *c.UI.SidebarOpen
		clone.UI.SidebarOpen = &open
	}
	return &clone
}

// String returns the config as TOML with the upstream API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Upstream.APIKey != "" {
		safe.Upstream.APIKey = "[REDACTED]"
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(safe); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return sb.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
