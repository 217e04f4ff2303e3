// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-radar/internal/research"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// historyItem is the compact listing shape: no summary body.
type historyItem struct {
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context(), 0)
	if err != nil {
		s.logger.Error("list history failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItem{
			ID:        e.ID,
			Topic:     e.Topic,
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid history ID")
		return
	}

	entry, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("get history failed", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}
	s.respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid history ID")
		return
	}

	deleted, err := s.history.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error("delete history failed", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStream runs a full research session over SSE.
//
// Events emitted, one JSON object per data line:
//
//	{"type":"token","text":"..."}     streaming narrative fragment
//	{"type":"source","data":{...}}    a web source discovered
//	{"type":"structured","data":{..}} final report
//	{"type":"history_id","id":123}    DB row ID after save
//	{"type":"error","message":"..."}  on failure
//
// followed by a terminal "data: [DONE]" line. A failed run emits the
// error event and persists nothing.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		s.respondError(w, http.StatusBadRequest, "topic query param is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	emit := func(payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error("marshaling SSE payload", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	_, _, err := s.runner.Stream(r.Context(), topic, func(ev research.Event) {
		switch ev.Kind {
		case research.EventToken:
			emit(map[string]string{"type": "token", "text": ev.Token})
		case research.EventSource:
			emit(map[string]any{"type": "source", "data": ev.Source})
		case research.EventReport:
			emit(map[string]any{"type": "structured", "data": ev.Report})
		case research.EventSaved:
			emit(map[string]any{"type": "history_id", "id": ev.HistoryID})
		}
	})
	if err != nil {
		s.logger.Error("research stream failed", zap.String("topic", topic), zap.Error(err))
		emit(map[string]string{"type": "error", "message": err.Error()})
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
