// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-radar/internal/claude"
	"github.com/pdiddy/topic-radar/pkg/types"
)

// fakeCompleter returns a canned response and records the request.
type fakeCompleter struct {
	response string
	err      error
	lastReq  claude.Request
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, r claude.Request) (string, error) {
	f.calls++
	f.lastReq = r
	return f.response, f.err
}

func someResults(n int) []types.SearchResult {
	var results []types.SearchResult
	for i := 0; i < n; i++ {
		results = append(results, types.SearchResult{
			Title: fmt.Sprintf("Result %d", i+1),
			URL:   fmt.Sprintf("https://example.com/%d", i+1),
		})
	}
	return results
}

const validPayload = `{
	"overview": "Quantum computing is advancing quickly.",
	"key_themes": ["error correction", "qubit scaling"],
	"notable_trends": ["cloud access widening"],
	"top_entities": ["IBM", "Google"]
}`

func TestExecutiveSummaryEmptyResults(t *testing.T) {
	f := &fakeCompleter{}
	s := New(f, types.SummaryConfig{})

	got := s.ExecutiveSummary(context.Background(), "quantum computing", nil, types.IntentAcademic, "ignored narrative")

	assert.Equal(t, `No results found for "quantum computing".`, got.Overview)
	assert.Empty(t, got.KeyThemes)
	assert.Zero(t, f.calls, "no synthesis call for empty results")
}

func TestExecutiveSummaryNarrativeFastPath(t *testing.T) {
	f := &fakeCompleter{response: validPayload}
	s := New(f, types.SummaryConfig{})

	got := s.ExecutiveSummary(context.Background(), "q", someResults(2), types.IntentExploratory, "  The narrative already written.  ")

	assert.Equal(t, "The narrative already written.", got.Overview)
	assert.Empty(t, got.KeyThemes)
	assert.Zero(t, f.calls, "narrative short-circuits synthesis")
}

func TestExecutiveSummarySynthesis(t *testing.T) {
	f := &fakeCompleter{response: validPayload}
	s := New(f, types.SummaryConfig{})

	got := s.ExecutiveSummary(context.Background(), "quantum computing", someResults(3), types.IntentAcademic, "")

	assert.Equal(t, "Quantum computing is advancing quickly.", got.Overview)
	assert.Equal(t, []string{"error correction", "qubit scaling"}, got.KeyThemes)
	assert.Equal(t, []string{"cloud access widening"}, got.NotableTrends)
	assert.Equal(t, []string{"IBM", "Google"}, got.TopEntities)
	assert.Equal(t, 1, f.calls)
}

func TestExecutiveSummaryPromptShape(t *testing.T) {
	f := &fakeCompleter{response: validPayload}
	s := New(f, types.SummaryConfig{MaxTokens: 123})

	s.ExecutiveSummary(context.Background(), "quantum computing", someResults(12), types.IntentBusiness, "")

	req := f.lastReq
	assert.Equal(t, 123, req.MaxTokens)
	assert.Contains(t, req.System, "Return only valid JSON")
	require.Len(t, req.Messages, 1)

	content := req.Messages[0].Content
	assert.Contains(t, content, "Query: quantum computing")
	assert.Contains(t, content, "market dynamics", "intent instruction is embedded")
	assert.Contains(t, content, "[10] Result 10")
	assert.NotContains(t, content, "Result 11", "context capped at ten titles")
}

func TestExecutiveSummaryDegradesGracefully(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"transport error", "", errors.New("api down")},
		{"malformed JSON", "Sure! Here's your summary:", nil},
		{"missing field", `{"overview": "x", "key_themes": [], "notable_trends": []}`, nil},
		{"null field", `{"overview": null, "key_themes": [], "notable_trends": [], "top_entities": []}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCompleter{response: tt.response, err: tt.err}
			s := New(f, types.SummaryConfig{})

			got := s.ExecutiveSummary(context.Background(), "penguins", someResults(4), types.IntentExploratory, "")

			assert.Equal(t, `Found 4 results for "penguins".`, got.Overview)
			assert.Empty(t, got.KeyThemes)
			assert.Empty(t, got.NotableTrends)
			assert.Empty(t, got.TopEntities)
		})
	}
}

func TestExecutiveSummaryUnknownIntentInstruction(t *testing.T) {
	f := &fakeCompleter{response: validPayload}
	s := New(f, types.SummaryConfig{})

	s.ExecutiveSummary(context.Background(), "q", someResults(1), types.Intent("weird"), "")

	assert.Contains(t, f.lastReq.Messages[0].Content, defaultInstruction)
}

func TestSummarizeResult(t *testing.T) {
	long := strings.Repeat("a", 350)
	unicodeLong := strings.Repeat("é", 350)

	tests := []struct {
		name    string
		title   string
		snippet string
		want    string
	}{
		{"short snippet kept", "Title", "A short snippet.", "A short snippet."},
		{"empty snippet falls back to title", "The Title", "", "The Title"},
		{"long snippet truncated", "Title", long, strings.Repeat("a", 300) + "…"},
		{"truncation counts runes", "Title", unicodeLong, strings.Repeat("é", 300) + "…"},
		{"trailing space trimmed", "Title", "ends with space ", "ends with space"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeResult(tt.title, tt.snippet))
		})
	}
}
