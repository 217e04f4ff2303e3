// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	"github.com/pdiddy/topic-radar/internal/claude"
	"github.com/pdiddy/topic-radar/pkg/types"
)

const defaultModel = "claude-haiku-4-5"

func setConfigDefaults() {
	viper.SetDefault("http.timeout", "60s")
	viper.SetDefault("http.user_agent", "topic-radar/"+version)
	viper.SetDefault("search.model", defaultModel)
	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.max_web_searches", 1)
	viper.SetDefault("search.max_tokens", 800)
	viper.SetDefault("summary.model", defaultModel)
	viper.SetDefault("summary.max_tokens", 500)
	viper.SetDefault("history.db_path", "data/history.db")
	viper.SetDefault("history.list_limit", 50)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5001)
}

// loadAppConfig builds the application config from viper (file + env),
// filling the API key from .secrets/ when not configured directly.
func loadAppConfig() (types.Config, error) {
	setConfigDefaults()

	apiKey := secretDefault("anthropic-api-key", viper.GetString("anthropic_api_key"))
	if apiKey == "" {
		return types.Config{}, fmt.Errorf(
			"no Anthropic API key: set TOPIC_RADAR_ANTHROPIC_API_KEY, anthropic_api_key in the config file, or .secrets/anthropic-api-key")
	}

	cfg := types.Config{
		HTTP: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		Search: types.SearchConfig{
			AIConfig: types.AIConfig{
				Model:  viper.GetString("search.model"),
				APIKey: apiKey,
			},
			MaxResults:     viper.GetInt("search.max_results"),
			MaxWebSearches: viper.GetInt("search.max_web_searches"),
			MaxTokens:      viper.GetInt("search.max_tokens"),
		},
		Summary: types.SummaryConfig{
			AIConfig: types.AIConfig{
				Model:  viper.GetString("summary.model"),
				APIKey: apiKey,
			},
			MaxTokens: viper.GetInt("summary.max_tokens"),
		},
		History: types.HistoryConfig{
			DBPath:    viper.GetString("history.db_path"),
			ListLimit: viper.GetInt("history.list_limit"),
		},
		Server: types.ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
	}
	return cfg, nil
}

// newClients returns the streaming research client and the synthesis
// client. Only the synthesis client carries the HTTP timeout: the research
// call streams and must not be cut off mid-response.
func newClients(cfg types.Config) (searchClient, summaryClient *claude.Client) {
	searchClient = &claude.Client{
		Model:      cfg.Search.Model,
		APIKey:     cfg.Search.APIKey,
		MaxRetries: cfg.Search.MaxRetries,
		UserAgent:  cfg.HTTP.UserAgent,
	}
	summaryClient = &claude.Client{
		Model:      cfg.Summary.Model,
		APIKey:     cfg.Summary.APIKey,
		MaxRetries: cfg.Summary.MaxRetries,
		UserAgent:  cfg.HTTP.UserAgent,
		HTTPClient: &http.Client{Timeout: cfg.HTTP.Timeout},
	}
	return searchClient, summaryClient
}
