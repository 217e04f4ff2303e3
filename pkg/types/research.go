// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the topic-radar pipeline.
package types

import "time"

// Intent is the coarse category of the user's research goal. It selects
// the research prompt and the section display order.
type Intent string

const (
	IntentAcademic    Intent = "academic"    // research papers, studies, methodology
	IntentTutorial    Intent = "tutorial"    // learning, how-to guides, examples
	IntentBusiness    Intent = "business"    // news, funding, market intelligence
	IntentExploratory Intent = "exploratory" // general overview, broad exploration
)

// ContentType classifies a single discovered web source.
type ContentType string

const (
	ContentPapers      ContentType = "papers"
	ContentNews        ContentType = "news"
	ContentDiscussions ContentType = "discussions"
	ContentVideos      ContentType = "videos"
	ContentCode        ContentType = "code"
	ContentUnknown     ContentType = "unknown"
)

// contentTypeLabels maps each content type to its display heading.
var contentTypeLabels = map[ContentType]string{
	ContentPapers:      "📄 Research Papers",
	ContentNews:        "📰 News & Articles",
	ContentDiscussions: "💬 Discussions",
	ContentVideos:      "🎥 Videos",
	ContentCode:        "💻 Code",
	ContentUnknown:     "📌 Other",
}

// Label returns the human-readable heading for the content type.
func (c ContentType) Label() string {
	if label, ok := contentTypeLabels[c]; ok {
		return label
	}
	return contentTypeLabels[ContentUnknown]
}

// SearchResult is a single web source discovered during a research run.
type SearchResult struct {
	// Title is the page title as reported by the search tool.
	Title string `json:"title" yaml:"title"`

	// URL is the source URL. It is the deduplication and classification key.
	URL string `json:"url" yaml:"url"`

	// Snippet is preview text for the result, when available.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Source is the bare hostname derived from URL (no "www." prefix).
	Source string `json:"source" yaml:"source"`

	// PublishedDate is an optional page-age hint from the search tool.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// ContentType is filled in by the classifier after discovery.
	ContentType ContentType `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// AISummary is a short card-level summary filled in after aggregation.
	AISummary string `json:"ai_summary,omitempty" yaml:"ai_summary,omitempty"`

	// RelevanceExplanation is an optional note on why the result matched.
	RelevanceExplanation string `json:"relevance_explanation,omitempty" yaml:"relevance_explanation,omitempty"`
}

// SearchResponse is the raw output of one streaming research call, before
// classification and aggregation.
type SearchResponse struct {
	// Query is the trimmed research query.
	Query string `json:"query" yaml:"query"`

	// Intent is the intent the orchestrator ran with (detected or supplied).
	Intent Intent `json:"intent" yaml:"intent"`

	// TimeRange is the optional temporal constraint applied to the run.
	TimeRange string `json:"time_range,omitempty" yaml:"time_range,omitempty"`

	// Results are the discovered sources in discovery order, capped at the
	// configured maximum.
	Results []SearchResult `json:"results" yaml:"results"`

	// Narrative is the free-form research prose assembled from text deltas
	// in arrival order.
	Narrative string `json:"narrative" yaml:"narrative"`
}

// Section is one displayed group of results sharing a content type.
type Section struct {
	ContentType ContentType    `json:"content_type" yaml:"content_type"`
	Results     []SearchResult `json:"results" yaml:"results"`
}

// ExecutiveSummary is the synthesis across a complete result set.
type ExecutiveSummary struct {
	// Overview is a short narrative overview of the findings.
	Overview string `json:"overview" yaml:"overview"`

	// KeyThemes lists the top recurring themes across results.
	KeyThemes []string `json:"key_themes" yaml:"key_themes"`

	// NotableTrends lists directional patterns or shifts observed.
	NotableTrends []string `json:"notable_trends" yaml:"notable_trends"`

	// TopEntities lists notable people, companies, or concepts.
	TopEntities []string `json:"top_entities" yaml:"top_entities"`
}

// SourceRef is a compact reference to a web source kept with a persisted
// summary.
type SourceRef struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// TopicSummary is the persisted artifact of one research run.
type TopicSummary struct {
	Topic         string      `json:"topic" yaml:"topic"`
	Overview      string      `json:"overview" yaml:"overview"`
	KeyThemes     []string    `json:"key_themes" yaml:"key_themes"`
	NotableTrends []string    `json:"notable_trends" yaml:"notable_trends"`
	TopEntities   []string    `json:"top_entities" yaml:"top_entities"`
	Sources       []SourceRef `json:"sources" yaml:"sources"`
}

// HistoryEntry is a persisted research result with its row identity.
type HistoryEntry struct {
	ID        int64        `json:"id" yaml:"id"`
	Topic     string       `json:"topic" yaml:"topic"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Summary   TopicSummary `json:"summary" yaml:"summary"`
}

// ResearchReport is the assembled response for one research run: the
// prioritized sections plus the executive summary.
type ResearchReport struct {
	Query     string           `json:"query" yaml:"query"`
	Intent    Intent           `json:"intent" yaml:"intent"`
	TimeRange string           `json:"time_range,omitempty" yaml:"time_range,omitempty"`
	Sections  []Section        `json:"sections" yaml:"sections"`
	Summary   ExecutiveSummary `json:"summary" yaml:"summary"`
}
