// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/topic-radar/internal/history"
	"github.com/pdiddy/topic-radar/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect saved research runs",
}

// openHistoryStore builds the store from config without requiring an API
// key: history commands never call the Claude API.
func openHistoryStore() (*history.Store, error) {
	setConfigDefaults()
	cfg := types.HistoryConfig{
		DBPath:    viper.GetString("history.db_path"),
		ListLimit: viper.GetInt("history.list_limit"),
	}
	return history.NewStore(cfg)
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent research runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No saved research runs.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%4d  %s  %s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Topic)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one saved research run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid history ID %q", args[0])
		}

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("history entry %d not found", id)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete one saved research run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid history ID %q", args[0])
		}

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		deleted, err := store.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("history entry %d not found", id)
		}
		fmt.Printf("Deleted history entry %d\n", id)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all saved research runs to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "yaml":
			return store.ExportYAML(cmd.Context(), os.Stdout)
		case "json":
			return store.ExportJSON(cmd.Context(), os.Stdout)
		default:
			return fmt.Errorf("unknown export format %q: use yaml or json", format)
		}
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum entries to list (default from config)")
	historyListCmd.Flags().Bool("json", false, "output as JSON")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
