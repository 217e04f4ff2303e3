// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate deduplicates, groups, and orders classified results
// into display sections. Section order adapts to the detected intent:
// academic queries put papers first, business queries put news first, and
// so on, via a fixed intent-to-order table rather than branching.
package aggregate

import (
	"strings"

	"github.com/pdiddy/topic-radar/pkg/types"
)

// intentPriority maps each intent to its preferred section order. Adding
// an intent or content type is a table addition, not a control-flow edit.
var intentPriority = map[types.Intent][]types.ContentType{
	types.IntentAcademic: {
		types.ContentPapers, types.ContentNews, types.ContentDiscussions,
		types.ContentVideos, types.ContentCode,
	},
	types.IntentTutorial: {
		types.ContentNews, types.ContentCode, types.ContentDiscussions,
		types.ContentVideos, types.ContentPapers,
	},
	types.IntentBusiness: {
		types.ContentNews, types.ContentDiscussions, types.ContentPapers,
		types.ContentVideos, types.ContentCode,
	},
	types.IntentExploratory: {
		types.ContentNews, types.ContentPapers, types.ContentDiscussions,
		types.ContentVideos, types.ContentCode,
	},
}

// defaultPriority is the fallback order for unknown intents.
var defaultPriority = intentPriority[types.IntentExploratory]

// Deduplicate removes duplicate results by URL, keeping the first
// occurrence in original order. URLs are normalized by trimming one
// trailing slash and lower-casing. Results with blank URLs are dropped
// entirely rather than treated as duplicates of each other.
func Deduplicate(results []types.SearchResult) []types.SearchResult {
	seen := make(map[string]bool, len(results))
	var unique []types.SearchResult

	for _, r := range results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSuffix(r.URL, "/"))
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}

// GroupByType groups results by content type. A result missing its tag is
// grouped under ContentNews; the result itself is not modified.
func GroupByType(results []types.SearchResult) map[types.ContentType][]types.SearchResult {
	groups := make(map[types.ContentType][]types.SearchResult)
	for _, r := range results {
		ct := r.ContentType
		if ct == "" {
			ct = types.ContentNews
		}
		groups[ct] = append(groups[ct], r)
	}
	return groups
}

// PrioritizeSections orders grouped results by the intent's priority
// table. Empty groups are omitted; groups whose content type is absent
// from the table are appended afterward in map-iteration order.
func PrioritizeSections(grouped map[types.ContentType][]types.SearchResult, intent types.Intent) []types.Section {
	order, ok := intentPriority[intent]
	if !ok {
		order = defaultPriority
	}

	var sections []types.Section
	emitted := make(map[types.ContentType]bool)

	for _, ct := range order {
		if results := grouped[ct]; len(results) > 0 {
			sections = append(sections, types.Section{ContentType: ct, Results: results})
			emitted[ct] = true
		}
	}
	for ct, results := range grouped {
		if !emitted[ct] && len(results) > 0 {
			sections = append(sections, types.Section{ContentType: ct, Results: results})
		}
	}
	return sections
}

// Aggregate is the full pipeline: deduplicate, truncate to maxResults,
// group by content type, prioritize by intent. Truncation happens before
// grouping, so late-discovered content types can be cut entirely. The
// emitted sections partition the truncated deduplicated input exactly.
func Aggregate(results []types.SearchResult, intent types.Intent, maxResults int) []types.Section {
	unique := Deduplicate(results)
	if maxResults > 0 && len(unique) > maxResults {
		unique = unique[:maxResults]
	}
	return PrioritizeSections(GroupByType(unique), intent)
}
