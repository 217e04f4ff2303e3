// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-radar/internal/research"
	"github.com/pdiddy/topic-radar/pkg/types"
)

// fakeRunner replays a scripted event sequence.
type fakeRunner struct {
	events   []research.Event
	err      error
	gotTopic string
}

func (f *fakeRunner) Stream(_ context.Context, topic string, onEvent func(research.Event)) (*types.ResearchReport, int64, error) {
	f.gotTopic = topic
	for _, ev := range f.events {
		onEvent(ev)
	}
	if f.err != nil {
		return nil, 0, f.err
	}
	return &types.ResearchReport{}, 42, nil
}

// fakeHistory is an in-memory HistoryReader.
type fakeHistory struct {
	entries []types.HistoryEntry
	err     error
}

func (f *fakeHistory) List(context.Context, int) ([]types.HistoryEntry, error) {
	return f.entries, f.err
}

func (f *fakeHistory) Get(_ context.Context, id int64) (*types.HistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeHistory) Delete(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newTestServer(runner Runner, history HistoryReader) *httptest.Server {
	s := NewServer(runner, history, &types.ServerConfig{}, zap.NewNop())
	return httptest.NewServer(s.Router())
}

func entry(id int64, topic string) types.HistoryEntry {
	return types.HistoryEntry{
		ID:        id,
		Topic:     topic,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:   types.TopicSummary{Topic: topic, Overview: "overview of " + topic},
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeRunner{}, &fakeHistory{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestListHistory(t *testing.T) {
	history := &fakeHistory{entries: []types.HistoryEntry{entry(2, "beta"), entry(1, "alpha")}}
	srv := newTestServer(&fakeRunner{}, history)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, "beta", items[0]["topic"])
	assert.NotContains(t, items[0], "summary", "listing is the compact shape")
}

func TestListHistoryEmpty(t *testing.T) {
	srv := newTestServer(&fakeRunner{}, &fakeHistory{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.NotNil(t, items, "empty history is [], not null")
	assert.Empty(t, items)
}

func TestGetHistory(t *testing.T) {
	history := &fakeHistory{entries: []types.HistoryEntry{entry(5, "quantum")}}
	srv := newTestServer(&fakeRunner{}, history)
	defer srv.Close()

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/history/5")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got types.HistoryEntry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "quantum", got.Topic)
		assert.Equal(t, "overview of quantum", got.Summary.Overview)
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/history/99")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad id", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/history/abc")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteHistory(t *testing.T) {
	history := &fakeHistory{entries: []types.HistoryEntry{entry(5, "quantum")}}
	srv := newTestServer(&fakeRunner{}, history)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/history/5", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(5), body["deleted"])

	// A second delete now finds nothing.
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/history/5", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryStoreFailure(t *testing.T) {
	srv := newTestServer(&fakeRunner{}, &fakeHistory{err: errors.New("db locked")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

// readSSE splits an SSE body into its data payloads.
func readSSE(t *testing.T, resp *http.Response) []string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payloads []string
	for _, line := range strings.Split(string(raw), "\n") {
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			payloads = append(payloads, data)
		}
	}
	return payloads
}

func TestStreamRequiresTopic(t *testing.T) {
	srv := newTestServer(&fakeRunner{}, &fakeHistory{})
	defer srv.Close()

	for _, q := range []string{"", "?topic=", "?topic=%20%20"} {
		resp, err := http.Get(srv.URL + "/api/stream" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", q)
	}
}

func TestStreamEmitsEvents(t *testing.T) {
	result := types.SearchResult{Title: "Paper", URL: "https://arxiv.org/abs/1"}
	report := types.ResearchReport{Query: "quantum", Intent: types.IntentAcademic}
	runner := &fakeRunner{events: []research.Event{
		{Kind: research.EventToken, Token: "Recent "},
		{Kind: research.EventSource, Source: &result},
		{Kind: research.EventToken, Token: "work."},
		{Kind: research.EventReport, Report: &report},
		{Kind: research.EventSaved, HistoryID: 42},
	}}
	srv := newTestServer(runner, &fakeHistory{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stream?topic=quantum+computing")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "quantum computing", runner.gotTopic)

	payloads := readSSE(t, resp)
	require.Len(t, payloads, 6)
	assert.Equal(t, "[DONE]", payloads[len(payloads)-1])

	var tokenEv struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(payloads[0]), &tokenEv))
	assert.Equal(t, "token", tokenEv.Type)
	assert.Equal(t, "Recent ", tokenEv.Text)

	var sourceEv struct {
		Type string             `json:"type"`
		Data types.SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(payloads[1]), &sourceEv))
	assert.Equal(t, "source", sourceEv.Type)
	assert.Equal(t, "https://arxiv.org/abs/1", sourceEv.Data.URL)

	var reportEv struct {
		Type string               `json:"type"`
		Data types.ResearchReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(payloads[3]), &reportEv))
	assert.Equal(t, "structured", reportEv.Type)
	assert.Equal(t, "quantum", reportEv.Data.Query)

	var savedEv struct {
		Type string `json:"type"`
		ID   int64  `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(payloads[4]), &savedEv))
	assert.Equal(t, "history_id", savedEv.Type)
	assert.Equal(t, int64(42), savedEv.ID)
}

func TestStreamFailureEmitsErrorEvent(t *testing.T) {
	runner := &fakeRunner{
		events: []research.Event{{Kind: research.EventToken, Token: "partial"}},
		err:    errors.New("upstream exploded"),
	}
	srv := newTestServer(runner, &fakeHistory{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stream?topic=anything")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "failure after headers stays on the stream")

	payloads := readSSE(t, resp)
	require.Len(t, payloads, 3)

	var errEv struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(payloads[1]), &errEv))
	assert.Equal(t, "error", errEv.Type)
	assert.Equal(t, "upstream exploded", errEv.Message)
	assert.Equal(t, "[DONE]", payloads[2])
}
