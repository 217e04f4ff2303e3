// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns a content type to each discovered source.
//
// URL domain tables are authoritative: curated allow-lists are low-noise.
// Title/snippet heuristics are a fallback for domains absent from the
// tables that are still recognizable by content cues. An unparseable URL
// yields ContentUnknown and never falls through to text heuristics: a
// missing URL means there is no reliable signal at all.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/topic-radar/pkg/types"
)

// Domain allow-lists, tested in priority order: papers, discussions,
// videos, code. Hosts are matched after lower-casing and stripping a
// leading "www.".
var paperDomains = map[string]bool{
	"arxiv.org": true, "pubmed.ncbi.nlm.nih.gov": true, "pmc.ncbi.nlm.nih.gov": true,
	"scholar.google.com": true, "semanticscholar.org": true, "papers.ssrn.com": true,
	"researchgate.net": true, "dl.acm.org": true, "ieee.org": true, "ieeexplore.ieee.org": true,
	"springer.com": true, "springerlink.com": true, "link.springer.com": true,
	"sciencedirect.com": true, "elsevier.com": true, "nature.com": true, "science.org": true,
	"cell.com": true, "biorxiv.org": true, "medrxiv.org": true, "plos.org": true,
	"plosone.org": true, "frontiersin.org": true, "mdpi.com": true, "openreview.net": true,
	"acm.org": true, "ncbi.nlm.nih.gov": true, "nih.gov": true,
}

var discussionDomains = map[string]bool{
	"reddit.com": true, "news.ycombinator.com": true, "stackoverflow.com": true,
	"stackexchange.com": true, "quora.com": true, "lobste.rs": true, "dev.to": true,
	"forum.fast.ai": true, "discuss.pytorch.org": true, "discourse.julialang.org": true,
}

var videoDomains = map[string]bool{
	"youtube.com": true, "youtu.be": true, "vimeo.com": true, "twitch.tv": true,
	"ted.com": true, "coursera.org": true, "udemy.com": true,
}

var codeDomains = map[string]bool{
	"github.com": true, "gitlab.com": true, "gist.github.com": true, "codepen.io": true,
	"replit.com": true, "colab.research.google.com": true, "huggingface.co": true,
	"pypi.org": true, "npmjs.com": true,
}

// ClassifyURL maps a URL to a content type by domain table membership.
// Unmatched, well-formed hosts default to ContentNews; an unparseable or
// empty host yields ContentUnknown.
func ClassifyURL(rawURL string) types.ContentType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return types.ContentUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return types.ContentUnknown
	}

	switch {
	case paperDomains[host]:
		return types.ContentPapers
	case discussionDomains[host]:
		return types.ContentDiscussions
	case videoDomains[host]:
		return types.ContentVideos
	case codeDomains[host]:
		return types.ContentCode
	}
	return types.ContentNews
}

// Keyword-pattern groups for the text fallback, tested in order: papers,
// discussions, videos, code. First match wins.
var (
	paperRe = regexp.MustCompile(
		`(?i)\b(?:arxiv|preprint|doi|abstract|methodology|findings|peer.reviewed|proceedings|conference paper)\b`)
	discussionRe = regexp.MustCompile(
		`(?i)\b(?:reddit|thread|discussion|comment|ama|posted|r/|upvote)\b`)
	videoRe = regexp.MustCompile(
		`(?i)\b(?:youtube|video|watch|episode|podcast|lecture|talk)\b`)
	codeRe = regexp.MustCompile(
		`(?i)\b(?:github|repo|repository|package|library|snippet|npm|pip install)\b`)
)

// ClassifyText infers a content type from title and snippet cues. No match
// keeps ContentNews.
func ClassifyText(title, snippet string) types.ContentType {
	combined := title + " " + snippet

	switch {
	case paperRe.MatchString(combined):
		return types.ContentPapers
	case discussionRe.MatchString(combined):
		return types.ContentDiscussions
	case videoRe.MatchString(combined):
		return types.ContentVideos
	case codeRe.MatchString(combined):
		return types.ContentCode
	}
	return types.ContentNews
}

// Classify maps a search result to a content type: URL classification
// first, text heuristics only when the URL step yielded exactly
// ContentNews (i.e. no domain-table hit).
func Classify(r types.SearchResult) types.ContentType {
	ct := ClassifyURL(r.URL)
	if ct != types.ContentNews {
		return ct
	}
	return ClassifyText(r.Title, r.Snippet)
}
