// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary produces the executive synthesis of a result set and
// short card-level summaries for individual results.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/topic-radar/internal/claude"
	"github.com/pdiddy/topic-radar/pkg/types"
)

// execSummarySystem instructs the model to answer with bare JSON matching
// the executive summary shape.
const execSummarySystem = "You are a research analyst. Read the provided search results and produce a " +
	"structured JSON summary with exactly these fields: " +
	`"overview" (string, 2-3 paragraph narrative), ` +
	`"key_themes" (array of strings, up to 5 recurring themes), ` +
	`"notable_trends" (array of strings, directional patterns observed), ` +
	`"top_entities" (array of strings, notable people, companies, or concepts). ` +
	"Return only valid JSON, no commentary, no markdown fences."

// intentInstructions tailor the synthesis focus to the detected intent.
var intentInstructions = map[types.Intent]string{
	types.IntentAcademic:    "Focus on methodology, evidence quality, and research gaps.",
	types.IntentTutorial:    "Focus on learning progression, skill level, and best resources.",
	types.IntentBusiness:    "Focus on market dynamics, key players, and financial data.",
	types.IntentExploratory: "Provide a balanced overview with key takeaways.",
}

const defaultInstruction = "Provide a balanced overview."

// maxContextTitles caps how many result titles feed the synthesis call.
const maxContextTitles = 10

// cardSummaryLimit is the character budget for a card-level summary.
const cardSummaryLimit = 300

// Completer is the slice of the Claude client the summarizer needs.
type Completer interface {
	Complete(ctx context.Context, r claude.Request) (string, error)
}

// Summarizer generates executive summaries over complete result sets.
type Summarizer struct {
	client Completer
	cfg    types.SummaryConfig
}

// New returns a summarizer using the given capability handle.
func New(client Completer, cfg types.SummaryConfig) *Summarizer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	return &Summarizer{client: client, cfg: cfg}
}

// ExecutiveSummary synthesizes a result set into an overview with themes,
// trends, and entities. The summary is an enhancement, not the primary
// deliverable, so it never fails: empty results yield a "no results"
// overview, a non-empty narrative is used verbatim without a second API
// call, and any synthesis or validation error degrades to a minimal
// overview reporting the result count.
func (s *Summarizer) ExecutiveSummary(ctx context.Context, query string, results []types.SearchResult, intent types.Intent, narrative string) types.ExecutiveSummary {
	if len(results) == 0 {
		return types.ExecutiveSummary{
			Overview: fmt.Sprintf("No results found for %q.", query),
		}
	}

	if text := strings.TrimSpace(narrative); text != "" {
		return types.ExecutiveSummary{Overview: text}
	}

	summary, err := s.synthesize(ctx, query, results, intent)
	if err != nil {
		return types.ExecutiveSummary{
			Overview: fmt.Sprintf("Found %d results for %q.", len(results), query),
		}
	}
	return summary
}

// synthesize issues one structured synthesis call over the result titles
// and validates the returned JSON shape. Validation failure is total
// failure, not partial recovery.
func (s *Summarizer) synthesize(ctx context.Context, query string, results []types.SearchResult, intent types.Intent) (types.ExecutiveSummary, error) {
	instruction, ok := intentInstructions[intent]
	if !ok {
		instruction = defaultInstruction
	}

	var titles strings.Builder
	for i, r := range results {
		if i >= maxContextTitles {
			break
		}
		fmt.Fprintf(&titles, "[%d] %s\n", i+1, r.Title)
	}

	userContent := fmt.Sprintf("Query: %s\nIntent: %s - %s\n\nSources:\n%s",
		query, intent, instruction, titles.String())

	raw, err := s.client.Complete(ctx, claude.Request{
		System:    execSummarySystem,
		MaxTokens: s.cfg.MaxTokens,
		Messages:  []claude.Message{{Role: "user", Content: userContent}},
	})
	if err != nil {
		return types.ExecutiveSummary{}, fmt.Errorf("synthesis call: %w", err)
	}

	// Pointer fields so missing keys are detectable as schema violations.
	var payload struct {
		Overview      *string   `json:"overview"`
		KeyThemes     *[]string `json:"key_themes"`
		NotableTrends *[]string `json:"notable_trends"`
		TopEntities   *[]string `json:"top_entities"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return types.ExecutiveSummary{}, fmt.Errorf("parsing synthesis JSON: %w", err)
	}
	if payload.Overview == nil || payload.KeyThemes == nil || payload.NotableTrends == nil || payload.TopEntities == nil {
		return types.ExecutiveSummary{}, fmt.Errorf("synthesis JSON missing required fields")
	}

	return types.ExecutiveSummary{
		Overview:      *payload.Overview,
		KeyThemes:     *payload.KeyThemes,
		NotableTrends: *payload.NotableTrends,
		TopEntities:   *payload.TopEntities,
	}, nil
}

// SummarizeResult returns a short card summary for a single result: the
// snippet (or, failing that, the title) truncated to the card budget.
func SummarizeResult(title, snippet string) string {
	combined := snippet
	if combined == "" {
		combined = title
	}

	runes := []rune(combined)
	if len(runes) <= cardSummaryLimit {
		return strings.TrimRight(combined, " ")
	}
	return strings.TrimRight(string(runes[:cardSummaryLimit]), " ") + "…"
}
