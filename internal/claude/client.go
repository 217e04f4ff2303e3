// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package claude is a minimal client for the Claude Messages API. It
// supports plain completions and server-sent-event streaming with the
// bounded-use web_search tool.
package claude

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/topic-radar/internal/httputil"
)

// apiBaseURL is the Claude API endpoint. Package-level var for test substitution.
var apiBaseURL = "https://api.anthropic.com/v1/messages"

const (
	apiVersion = "2023-06-01"

	// webSearchBeta is the beta header value required by the web_search tool.
	webSearchBeta = "web-search-2025-03-05"

	// maxLineSize bounds a single SSE data line. Tool-result frames carry
	// full source lists, so the default bufio limit is too small.
	maxLineSize = 1 << 20
)

// Client calls the Claude Messages API over plain HTTP.
type Client struct {
	APIKey     string
	Model      string
	MaxRetries int
	UserAgent  string
	HTTPClient *http.Client
}

// Message is a single message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool is a server-side tool descriptor attached to a request.
type Tool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

// WebSearchTool returns the web_search tool descriptor with a use budget.
func WebSearchTool(maxUses int) Tool {
	return Tool{Type: "web_search_20250305", Name: "web_search", MaxUses: maxUses}
}

// Request holds the caller-facing parameters of one Messages API call.
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
	Tools     []Tool
}

// apiRequest is the request body for the Messages API.
type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Tools     []Tool    `json:"tools,omitempty"`
	Stream    bool      `json:"stream,omitempty"`
}

// apiResponse is the non-streaming response body.
type apiResponse struct {
	Content []contentBlock `json:"content"`
}

// contentBlock is a content block in an API response.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// WebSource is one source discovered by the web_search tool.
type WebSource struct {
	Title   string
	URL     string
	PageAge string
}

// EventKind tags the variants of a StreamEvent.
type EventKind int

const (
	// EventText carries a text fragment of the model's response.
	EventText EventKind = iota + 1

	// EventSources carries sources discovered by a web_search invocation.
	EventSources
)

// StreamEvent is one tagged event from a streaming call. Exactly one
// payload field is meaningful, selected by Kind.
type StreamEvent struct {
	Kind    EventKind
	Text    string
	Sources []WebSource
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) newRequest(ctx context.Context, body apiRequest, beta bool) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if beta {
		req.Header.Set("anthropic-beta", webSearchBeta)
	}
	return req, nil
}

// Complete performs one non-streaming call and returns the concatenated
// text blocks of the response. Rate-limited calls are retried with backoff.
func (c *Client) Complete(ctx context.Context, r Request) (string, error) {
	body := apiRequest{
		Model:     c.Model,
		MaxTokens: r.MaxTokens,
		System:    r.System,
		Messages:  r.Messages,
		Tools:     r.Tools,
	}

	req, err := c.newRequest(ctx, body, len(r.Tools) > 0)
	if err != nil {
		return "", err
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient(), req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(detail))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var b strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("Claude API returned no text content")
	}
	return b.String(), nil
}

// streamFrame is one decoded SSE data payload. Only the fields relevant to
// source capture and text assembly are mapped; other event kinds are skipped.
type streamFrame struct {
	Type string `json:"type"`

	ContentBlock *struct {
		Type    string `json:"type"`
		Content []struct {
			Type    string `json:"type"`
			URL     string `json:"url"`
			Title   string `json:"title"`
			PageAge string `json:"page_age"`
		} `json:"content"`
	} `json:"content_block"`

	Delta *struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`

	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Stream performs one streaming call, invoking fn for each tagged event in
// arrival order. Tool-result and text-delta events may interleave
// arbitrarily; either kind may be entirely absent. A non-nil error from fn
// aborts the stream and is returned unchanged.
func (c *Client) Stream(ctx context.Context, r Request, fn func(StreamEvent) error) error {
	body := apiRequest{
		Model:     c.Model,
		MaxTokens: r.MaxTokens,
		System:    r.System,
		Messages:  r.Messages,
		Tools:     r.Tools,
		Stream:    true,
	}

	req, err := c.newRequest(ctx, body, len(r.Tools) > 0)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(detail))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue // "event:" lines and blank separators
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			return fmt.Errorf("decoding stream frame: %w", err)
		}

		switch frame.Type {
		case "content_block_start":
			if frame.ContentBlock == nil || frame.ContentBlock.Type != "web_search_tool_result" {
				continue
			}
			var sources []WebSource
			for _, item := range frame.ContentBlock.Content {
				if item.Type != "web_search_result" {
					continue
				}
				sources = append(sources, WebSource{
					Title:   item.Title,
					URL:     item.URL,
					PageAge: item.PageAge,
				})
			}
			if len(sources) > 0 {
				if err := fn(StreamEvent{Kind: EventSources, Sources: sources}); err != nil {
					return err
				}
			}

		case "content_block_delta":
			if frame.Delta == nil || frame.Delta.Type != "text_delta" {
				continue
			}
			if err := fn(StreamEvent{Kind: EventText, Text: frame.Delta.Text}); err != nil {
				return err
			}

		case "error":
			if frame.Error != nil {
				return fmt.Errorf("Claude stream error: %s: %s", frame.Error.Type, frame.Error.Message)
			}
			return fmt.Errorf("Claude stream error")

		case "message_stop":
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}
	return nil
}
