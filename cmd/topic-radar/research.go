// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-radar/internal/history"
	"github.com/pdiddy/topic-radar/internal/research"
	"github.com/pdiddy/topic-radar/internal/search"
	"github.com/pdiddy/topic-radar/internal/summary"
	"github.com/pdiddy/topic-radar/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "Research a topic and print the prioritized report",
	Long: `Research runs one full research session: Claude searches the web for the
topic, the discovered sources are classified and grouped into sections
ordered by the detected intent, and an executive summary is produced. The
result is saved to the history database unless --no-save is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadAppConfig()
		if err != nil {
			return err
		}

		maxResults, _ := cmd.Flags().GetInt("max-results")
		if maxResults > 0 {
			cfg.Search.MaxResults = maxResults
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		noSave, _ := cmd.Flags().GetBool("no-save")

		var store research.Saver
		if !noSave {
			s, err := history.NewStore(cfg.History)
			if err != nil {
				return fmt.Errorf("opening history store: %w", err)
			}
			defer s.Close()
			store = s
		}

		searchClient, summaryClient := newClients(cfg)

		researcher := research.New(
			search.NewOrchestrator(searchClient, cfg.Search),
			summary.New(summaryClient, cfg.Summary),
			store,
			cfg.Search.MaxResults,
			nil,
		)

		// Stream narrative tokens to stderr so --json output stays clean
		// while the user still sees live progress.
		onEvent := func(ev research.Event) {
			if ev.Kind == research.EventToken && !asJSON {
				fmt.Fprint(os.Stderr, ev.Token)
			}
		}

		report, historyID, err := researcher.Stream(cmd.Context(), args[0], onEvent)
		if err != nil {
			return err
		}
		if !asJSON {
			fmt.Fprintln(os.Stderr)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(report, historyID)
		return nil
	},
}

func printReport(report *types.ResearchReport, historyID int64) {
	fmt.Printf("\nTopic: %s   (intent: %s", report.Query, report.Intent)
	if report.TimeRange != "" {
		fmt.Printf(", time range: %s", report.TimeRange)
	}
	fmt.Println(")")

	for _, section := range report.Sections {
		fmt.Printf("\n%s\n", section.ContentType.Label())
		for _, r := range section.Results {
			fmt.Printf("  - %s\n    %s\n", r.Title, r.URL)
			if r.AISummary != "" {
				fmt.Printf("    %s\n", r.AISummary)
			}
		}
	}

	fmt.Printf("\nSummary\n-------\n%s\n", report.Summary.Overview)
	printList("Key themes", report.Summary.KeyThemes)
	printList("Notable trends", report.Summary.NotableTrends)
	printList("Top entities", report.Summary.TopEntities)

	if historyID > 0 {
		fmt.Printf("\nSaved as history entry %d\n", historyID)
	}
}

func printList(heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", heading)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

func init() {
	researchCmd.Flags().Int("max-results", 0, "maximum number of sources to keep (default from config)")
	researchCmd.Flags().Bool("json", false, "output the report as JSON")
	researchCmd.Flags().Bool("no-save", false, "do not save the run to history")

	rootCmd.AddCommand(researchCmd)
}
