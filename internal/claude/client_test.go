// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-radar/internal/httputil"
)

// withTestServer points the client at a local handler for the test's duration.
func withTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	orig := apiBaseURL
	apiBaseURL = srv.URL
	t.Cleanup(func() { apiBaseURL = orig })

	return &Client{APIKey: "test-key", Model: "test-model"}
}

func TestCompleteConcatenatesTextBlocks(t *testing.T) {
	var gotBody apiRequest
	var gotHeaders http.Header
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		fmt.Fprint(w, `{"content": [
			{"type": "text", "text": "Hello "},
			{"type": "tool_use", "text": "ignored"},
			{"type": "text", "text": "world"}
		]}`)
	})

	got, err := c.Complete(context.Background(), Request{
		System:    "be brief",
		MaxTokens: 500,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)

	assert.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	assert.Empty(t, gotHeaders.Get("anthropic-beta"), "no beta header without tools")

	assert.Equal(t, "test-model", gotBody.Model)
	assert.Equal(t, 500, gotBody.MaxTokens)
	assert.Equal(t, "be brief", gotBody.System)
	assert.False(t, gotBody.Stream)
}

func TestCompleteEmptyContentIsError(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": []}`)
	})

	_, err := c.Complete(context.Background(), Request{MaxTokens: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestCompleteNonOKStatus(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "bad model"}}`)
	})

	_, err := c.Complete(context.Background(), Request{MaxTokens: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "bad model")
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	origDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = origDelay })

	var calls int
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"hi"`, "body resent on retry")
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "ok"}]}`)
	})
	c.MaxRetries = 2

	got, err := c.Complete(context.Background(), Request{
		MaxTokens: 100,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

const streamFixture = `event: message_start
data: {"type": "message_start"}

event: content_block_start
data: {"type": "content_block_start", "content_block": {"type": "server_tool_use"}}

event: content_block_start
data: {"type": "content_block_start", "content_block": {"type": "web_search_tool_result", "content": [{"type": "web_search_result", "url": "https://arxiv.org/abs/1", "title": "Paper One", "page_age": "2 days ago"}, {"type": "other", "url": "https://skip.me", "title": "skipped"}, {"type": "web_search_result", "url": "https://example.com/2", "title": "Article Two"}]}}

event: content_block_delta
data: {"type": "content_block_delta", "delta": {"type": "text_delta", "text": "Recent work "}}

event: content_block_delta
data: {"type": "content_block_delta", "delta": {"type": "citations_delta"}}

event: content_block_delta
data: {"type": "content_block_delta", "delta": {"type": "text_delta", "text": "shows progress."}}

event: message_stop
data: {"type": "message_stop"}

data: {"type": "after_stop_never_seen"}
`

func TestStreamDispatchesTaggedEvents(t *testing.T) {
	var gotHeaders http.Header
	var gotBody apiRequest
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, streamFixture)
	})

	var events []StreamEvent
	err := c.Stream(context.Background(), Request{
		MaxTokens: 800,
		Tools:     []Tool{WebSearchTool(2)},
		Messages:  []Message{{Role: "user", Content: "Research: x"}},
	}, func(ev StreamEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, gotBody.Stream)
	assert.Equal(t, "web-search-2025-03-05", gotHeaders.Get("anthropic-beta"))
	require.Len(t, gotBody.Tools, 1)
	assert.Equal(t, "web_search_20250305", gotBody.Tools[0].Type)
	assert.Equal(t, 2, gotBody.Tools[0].MaxUses)

	require.Len(t, events, 3)

	assert.Equal(t, EventSources, events[0].Kind)
	require.Len(t, events[0].Sources, 2, "non-result items skipped")
	assert.Equal(t, "Paper One", events[0].Sources[0].Title)
	assert.Equal(t, "https://arxiv.org/abs/1", events[0].Sources[0].URL)
	assert.Equal(t, "2 days ago", events[0].Sources[0].PageAge)
	assert.Equal(t, "https://example.com/2", events[0].Sources[1].URL)

	assert.Equal(t, EventText, events[1].Kind)
	assert.Equal(t, "Recent work ", events[1].Text)
	assert.Equal(t, "shows progress.", events[2].Text)
}

func TestStreamErrorEvent(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\": \"error\", \"error\": {\"type\": \"overloaded_error\", \"message\": \"try later\"}}\n\n")
	})

	err := c.Stream(context.Background(), Request{MaxTokens: 100}, func(StreamEvent) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded_error")
	assert.Contains(t, err.Error(), "try later")
}

func TestStreamCallbackErrorAborts(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, streamFixture)
	})

	abort := fmt.Errorf("stop now")
	var calls int
	err := c.Stream(context.Background(), Request{MaxTokens: 100}, func(StreamEvent) error {
		calls++
		return abort
	})
	assert.ErrorIs(t, err, abort)
	assert.Equal(t, 1, calls)
}

func TestStreamNonOKStatus(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "upstream broke")
	})

	err := c.Stream(context.Background(), Request{MaxTokens: 100}, func(StreamEvent) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestStreamEndOfBodyWithoutStop(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\": \"content_block_delta\", \"delta\": {\"type\": \"text_delta\", \"text\": \"partial\"}}\n\n")
	})

	var texts []string
	err := c.Stream(context.Background(), Request{MaxTokens: 100}, func(ev StreamEvent) error {
		texts = append(texts, ev.Text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"partial"}, texts)
}
