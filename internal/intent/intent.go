// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent derives a research intent and an optional time-range hint
// from a free-text query using keyword heuristics.
package intent

import (
	"regexp"
	"strings"

	"github.com/pdiddy/topic-radar/pkg/types"
)

// Signal sets for heuristic intent classification. The sets are disjoint;
// each signal contributes one hit when it appears as a substring.
var (
	academicSignals = []string{
		"paper", "papers", "research", "study", "studies", "arxiv", "journal",
		"doi", "scholar", "preprint", "methodology", "findings", "experiment",
		"hypothesis", "citation", "peer-reviewed", "abstract",
	}
	tutorialSignals = []string{
		"how to", "tutorial", "learn", "guide", "example", "examples",
		"step by step", "beginner", "introduction to", "getting started",
		"course", "walkthrough", "explained", "for dummies",
	}
	businessSignals = []string{
		"funding", "startup", "startups", "market", "revenue", "valuation",
		"raised", "acquisition", "ipo", "series a", "series b", "venture",
		"investor", "unicorn", "mrr", "arr", "churn", "b2b", "saas",
	}
)

// scoredIntents fixes the tie-break order: the first intent with a maximal
// hit count wins, so academic beats tutorial beats business on ties.
var scoredIntents = []struct {
	intent  types.Intent
	signals []string
}{
	{types.IntentAcademic, academicSignals},
	{types.IntentTutorial, tutorialSignals},
	{types.IntentBusiness, businessSignals},
}

// Detect returns the most likely intent for a query. Queries with no
// signal hits are exploratory. Detect is total: it never fails.
func Detect(query string) types.Intent {
	q := strings.ToLower(query)

	best := types.IntentExploratory
	bestHits := 0
	for _, candidate := range scoredIntents {
		hits := 0
		for _, sig := range candidate.signals {
			if strings.Contains(q, sig) {
				hits++
			}
		}
		if hits > bestHits {
			best = candidate.intent
			bestHits = hits
		}
	}
	return best
}

// timeRangePatterns are tried strictly in order; the first match wins.
var timeRangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)past \d+ (?:months?|years?|weeks?|days?)`),
	regexp.MustCompile(`(?i)last \d+ (?:months?|years?|weeks?|days?)`),
	regexp.MustCompile(`(?i)(?:this|last) (?:year|month|week)`),
	regexp.MustCompile(`\b20\d{2}\b`), // four-digit year e.g. 2024
}

// ParseTimeRange extracts an optional time-range hint from a query,
// returning the literal matched text or "" when no pattern matches. The
// hint only biases the research call; it is never validated as a date.
func ParseTimeRange(query string) string {
	for _, pattern := range timeRangePatterns {
		if m := pattern.FindString(query); m != "" {
			return m
		}
	}
	return ""
}
