// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for outbound API calls.
type HTTPConfig struct {
	// Timeout bounds non-streaming API calls. Streaming calls carry no
	// client timeout; a research stream may legitimately run for minutes.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "topic-radar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call the Claude API.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-haiku-4-5").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for rate-limited calls (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the streaming research pass.
type SearchConfig struct {
	AIConfig `yaml:",inline"`

	// MaxResults is the maximum number of sources kept per run (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxWebSearches caps how many times the web_search tool may run per
	// call. A budget control, not a retry mechanism (default 1).
	MaxWebSearches int `json:"max_web_searches" yaml:"max_web_searches"`

	// MaxTokens bounds the research response size (default 800).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// SummaryConfig holds settings for the synthesis pass.
type SummaryConfig struct {
	AIConfig `yaml:",inline"`

	// MaxTokens bounds the synthesis response size (default 500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// HistoryConfig holds settings for the research history store.
type HistoryConfig struct {
	// DBPath is the SQLite database file (default "data/history.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// ListLimit is the default maximum entries returned by list (default 50).
	ListLimit int `json:"list_limit" yaml:"list_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address (default "0.0.0.0").
	Host string `json:"host" yaml:"host"`

	// Port is the listen port (default 5001).
	Port int `json:"port" yaml:"port"`
}

// Config is the complete application configuration.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	Summary SummaryConfig `json:"summary" yaml:"summary"`
	History HistoryConfig `json:"history" yaml:"history"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}
