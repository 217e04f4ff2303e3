// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the topic-radar CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/topic-radar/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// secretDefault returns fallback if non-empty, then the secret value for
// key from .secrets/, then "".
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return secrets.Key(secrets.Dir, key)
}

// rootCmd is the base command for the topic-radar CLI.
var rootCmd = &cobra.Command{
	Use:   "topic-radar",
	Short: "Claude-driven topic research with adaptive result display",
	Long: `topic-radar researches a topic with Claude's web_search tool, classifies
the discovered sources by content type, orders sections by the detected
query intent, and produces an executive summary. Completed runs are saved
to a local history database.

Use "research" for a one-shot run, "serve" to start the web API with a
live SSE research stream, and "history" to inspect past runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Announce which secrets are available; lookups go through
		// secretDefault at config-build time.
		s, err := secrets.Load(secrets.Dir)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./topic-radar.yaml or ~/.config/topic-radar/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("topic-radar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "topic-radar"))
		}
	}

	viper.SetEnvPrefix("TOPIC_RADAR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
