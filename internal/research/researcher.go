// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research drives the full pipeline for one topic: intent
// detection, streaming search, classification, aggregation, synthesis,
// and persistence. Each run owns its buffers; concurrent runs share no
// in-memory state.
package research

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-radar/internal/aggregate"
	"github.com/pdiddy/topic-radar/internal/classify"
	"github.com/pdiddy/topic-radar/internal/search"
	"github.com/pdiddy/topic-radar/internal/summary"
	"github.com/pdiddy/topic-radar/pkg/types"
)

// EventKind tags the variants of a pipeline progress event.
type EventKind int

const (
	// EventToken carries one narrative text fragment, in arrival order.
	EventToken EventKind = iota + 1

	// EventSource carries one discovered source, in discovery order.
	EventSource

	// EventReport carries the final assembled report.
	EventReport

	// EventSaved carries the history row ID after persistence.
	EventSaved
)

// Event is one progress event pushed to the caller during a run.
type Event struct {
	Kind      EventKind
	Token     string
	Source    *types.SearchResult
	Report    *types.ResearchReport
	HistoryID int64
}

// Searcher produces the raw result set for a query.
type Searcher interface {
	Stream(ctx context.Context, query string, opts search.Options, onEvent func(search.Event)) (types.SearchResponse, error)
}

// Synthesizer produces the executive summary over a result set.
type Synthesizer interface {
	ExecutiveSummary(ctx context.Context, query string, results []types.SearchResult, intent types.Intent, narrative string) types.ExecutiveSummary
}

// Saver appends one summary per successful run. A nil Saver disables
// persistence.
type Saver interface {
	Save(ctx context.Context, topic string, summary types.TopicSummary) (int64, error)
}

// maxPersistedSources caps the sources kept with a persisted summary.
const maxPersistedSources = 10

// Researcher wires the pipeline stages together. All collaborators are
// injected at construction; tests substitute fakes.
type Researcher struct {
	searcher    Searcher
	synthesizer Synthesizer
	store       Saver
	maxResults  int
	logger      *zap.Logger
}

// New returns a researcher. store may be nil to skip persistence.
func New(searcher Searcher, synthesizer Synthesizer, store Saver, maxResults int, logger *zap.Logger) *Researcher {
	if maxResults <= 0 {
		maxResults = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Researcher{
		searcher:    searcher,
		synthesizer: synthesizer,
		store:       store,
		maxResults:  maxResults,
		logger:      logger,
	}
}

// Stream runs the full pipeline for topic, pushing progress events to
// onEvent as they occur. On success it returns the assembled report and
// the history row ID (zero when persistence is disabled). On failure no
// history entry is written; events already pushed remain valid for live
// display.
func (r *Researcher) Stream(ctx context.Context, topic string, onEvent func(Event)) (*types.ResearchReport, int64, error) {
	runID := uuid.NewString()
	r.logger.Info("research run started",
		zap.String("run_id", runID),
		zap.String("topic", topic))

	resp, err := r.searcher.Stream(ctx, topic, search.Options{}, func(ev search.Event) {
		if onEvent == nil {
			return
		}
		switch {
		case ev.Result != nil:
			onEvent(Event{Kind: EventSource, Source: ev.Result})
		case ev.Token != "":
			onEvent(Event{Kind: EventToken, Token: ev.Token})
		}
	})
	if err != nil {
		r.logger.Warn("research run failed",
			zap.String("run_id", runID),
			zap.Error(err))
		return nil, 0, err
	}

	for i := range resp.Results {
		resp.Results[i].ContentType = classify.Classify(resp.Results[i])
		resp.Results[i].AISummary = summary.SummarizeResult(resp.Results[i].Title, resp.Results[i].Snippet)
	}

	sections := aggregate.Aggregate(resp.Results, resp.Intent, r.maxResults)
	exec := r.synthesizer.ExecutiveSummary(ctx, resp.Query, resp.Results, resp.Intent, resp.Narrative)

	report := &types.ResearchReport{
		Query:     resp.Query,
		Intent:    resp.Intent,
		TimeRange: resp.TimeRange,
		Sections:  sections,
		Summary:   exec,
	}
	if onEvent != nil {
		onEvent(Event{Kind: EventReport, Report: report})
	}

	var historyID int64
	if r.store != nil {
		historyID, err = r.store.Save(ctx, resp.Query, buildTopicSummary(resp.Query, exec, resp.Results))
		if err != nil {
			return nil, 0, fmt.Errorf("saving history entry: %w", err)
		}
		if onEvent != nil {
			onEvent(Event{Kind: EventSaved, HistoryID: historyID})
		}
	}

	r.logger.Info("research run complete",
		zap.String("run_id", runID),
		zap.Int("sources", len(resp.Results)),
		zap.Int("sections", len(sections)),
		zap.Int64("history_id", historyID))
	return report, historyID, nil
}

// Run is the blocking form of Stream, without progress events.
func (r *Researcher) Run(ctx context.Context, topic string) (*types.ResearchReport, int64, error) {
	return r.Stream(ctx, topic, nil)
}

// buildTopicSummary assembles the persisted artifact of a run.
func buildTopicSummary(topic string, exec types.ExecutiveSummary, results []types.SearchResult) types.TopicSummary {
	var sources []types.SourceRef
	for i, r := range results {
		if i >= maxPersistedSources {
			break
		}
		sources = append(sources, types.SourceRef{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Snippet,
		})
	}
	return types.TopicSummary{
		Topic:         topic,
		Overview:      exec.Overview,
		KeyThemes:     exec.KeyThemes,
		NotableTrends: exec.NotableTrends,
		TopEntities:   exec.TopEntities,
		Sources:       sources,
	}
}
