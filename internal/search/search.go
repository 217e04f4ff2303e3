// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search orchestrates streaming web research calls and assembles
// the raw result set consumed by the display pipeline.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/topic-radar/internal/claude"
	"github.com/pdiddy/topic-radar/internal/intent"
	"github.com/pdiddy/topic-radar/pkg/types"
)

// ErrEmptyQuery is returned for blank queries, before any external call.
// Callers can distinguish it from upstream service errors.
var ErrEmptyQuery = errors.New("search query must not be empty")

// systemPrompts are the research instruction templates keyed by intent.
var systemPrompts = map[types.Intent]string{
	types.IntentAcademic: "You are a scientific research assistant. Search the web 2-3 times: " +
		"find recent studies and preprints, then look for meta-analyses or expert " +
		"consensus. Write a concise report covering: abstract-style overview, " +
		"5 key findings with evidence quality, research trends, and methodological " +
		"limitations. Prioritise peer-reviewed sources and preprints (ArXiv, PubMed).",
	types.IntentTutorial: "You are a technical education specialist. Search the web 2-3 times: " +
		"find the best tutorials, official docs, and community guides. Write a " +
		"concise report covering: quick-start overview, 5 key learning resources " +
		"with skill level, recommended learning path, common pitfalls to avoid.",
	types.IntentBusiness: "You are a market intelligence analyst. Search the web 2-3 times: " +
		"find recent news, funding rounds, and market data. Write a concise report " +
		"covering: market overview with size/growth, 5 notable companies/deals, " +
		"emerging trends, key risks. Include data points (TAM, CAGR, round sizes) " +
		"where available.",
	types.IntentExploratory: "You are a research assistant. Search the web 2-3 times: start broad, " +
		"then drill into the most interesting angle. Write a concise report covering: " +
		"overview, 5 key points, current trends, known gaps. Be factual and balanced.",
}

// Streamer is the slice of the Claude client the orchestrator needs.
// Tests substitute a fake.
type Streamer interface {
	Stream(ctx context.Context, r claude.Request, fn func(claude.StreamEvent) error) error
}

// Event is one progress event surfaced to the caller during a run. Exactly
// one field is set: Token for a narrative fragment, Result for a source.
type Event struct {
	Token  string
	Result *types.SearchResult
}

// Options adjust a single run. The zero value detects intent and
// time-range from the query.
type Options struct {
	// Intent overrides detection when non-empty.
	Intent types.Intent

	// TimeRange overrides extraction when non-empty.
	TimeRange string
}

// Orchestrator drives one streaming research call at a time. Each run owns
// its result and narrative buffers; concurrent runs share no state.
type Orchestrator struct {
	client Streamer
	cfg    types.SearchConfig
}

// NewOrchestrator returns an orchestrator using the given capability handle.
func NewOrchestrator(client Streamer, cfg types.SearchConfig) *Orchestrator {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.MaxWebSearches <= 0 {
		cfg.MaxWebSearches = 1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	return &Orchestrator{client: client, cfg: cfg}
}

// Stream performs one research run, pushing events to onEvent in arrival
// order as the external stream produces them. Results preserve discovery
// order and are capped at the configured maximum; overflow sources are
// dropped, not buffered. Narrative deltas are concatenated losslessly.
//
// The returned response is only valid when err is nil: a transport or
// service error aborts the run, and events already pushed remain valid
// for live display but are not finalized into a result set.
func (o *Orchestrator) Stream(ctx context.Context, query string, opts Options, onEvent func(Event)) (types.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.SearchResponse{}, ErrEmptyQuery
	}

	runIntent := opts.Intent
	if runIntent == "" {
		runIntent = intent.Detect(query)
	}
	timeRange := opts.TimeRange
	if timeRange == "" {
		timeRange = intent.ParseTimeRange(query)
	}

	system, ok := systemPrompts[runIntent]
	if !ok {
		system = systemPrompts[types.IntentExploratory]
	}

	userMessage := "Research: " + query
	if timeRange != "" {
		userMessage += " (focus on: " + timeRange + ")"
	}

	var results []types.SearchResult
	var narrative strings.Builder

	req := claude.Request{
		System:    system,
		MaxTokens: o.cfg.MaxTokens,
		Tools:     []claude.Tool{claude.WebSearchTool(o.cfg.MaxWebSearches)},
		Messages:  []claude.Message{{Role: "user", Content: userMessage}},
	}

	err := o.client.Stream(ctx, req, func(ev claude.StreamEvent) error {
		switch ev.Kind {
		case claude.EventSources:
			for _, src := range ev.Sources {
				if len(results) >= o.cfg.MaxResults {
					break
				}
				results = append(results, types.SearchResult{
					Title:         src.Title,
					URL:           src.URL,
					Source:        hostname(src.URL),
					PublishedDate: src.PageAge,
				})
				if onEvent != nil {
					r := results[len(results)-1]
					onEvent(Event{Result: &r})
				}
			}
		case claude.EventText:
			narrative.WriteString(ev.Text)
			if onEvent != nil {
				onEvent(Event{Token: ev.Text})
			}
		}
		return nil
	})
	if err != nil {
		return types.SearchResponse{}, fmt.Errorf("research stream: %w", err)
	}

	if len(results) > o.cfg.MaxResults {
		results = results[:o.cfg.MaxResults]
	}

	return types.SearchResponse{
		Query:     query,
		Intent:    runIntent,
		TimeRange: timeRange,
		Results:   results,
		Narrative: narrative.String(),
	}, nil
}

// Search is the blocking convenience form: it exhausts the stream without
// surfacing progress events.
func (o *Orchestrator) Search(ctx context.Context, query string, opts Options) (types.SearchResponse, error) {
	return o.Stream(ctx, query, opts, nil)
}

var wwwPrefix = regexp.MustCompile(`^www\.`)

// hostname returns the bare hostname of rawURL with any "www." prefix
// stripped, or rawURL itself when no host can be parsed.
func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return wwwPrefix.ReplaceAllString(u.Hostname(), "")
}
