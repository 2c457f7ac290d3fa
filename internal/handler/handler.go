// Package handler exposes the search and query-history HTTP endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/openchat-labs/chatsearch/internal/events"
	"github.com/openchat-labs/chatsearch/internal/history"
	"github.com/openchat-labs/chatsearch/internal/orchestrator"
	"github.com/openchat-labs/chatsearch/pkg/logger"
	"github.com/openchat-labs/chatsearch/pkg/metrics"
	"github.com/openchat-labs/chatsearch/pkg/middleware"
)

// Searcher is the orchestrator surface the handler needs.
type Searcher interface {
	Search(ctx context.Context, query string, conversationID string) (*orchestrator.Results, error)
}

// SearchResponse is the JSON body of a search call.
type SearchResponse struct {
	Query    string                `json:"query"`
	Agents   []orchestrator.Result `json:"agents"`
	Messages []orchestrator.Result `json:"messages"`
	Other    []orchestrator.Result `json:"other"`
	TookMs   int64                 `json:"took_ms"`
}

// Handler serves the search API.
type Handler struct {
	searcher  Searcher
	history   *history.Store
	collector *events.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Handler. history, collector, and m may be nil.
func New(searcher Searcher, hist *history.Store, collector *events.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		searcher:  searcher,
		history:   hist,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	params := r.URL.Query()
	if !params.Has("q") {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	query := params.Get("q")
	conversationID := params.Get("conversation_id")

	results, err := h.searcher.Search(ctx, query, conversationID)
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.countQuery("error")
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	took := time.Since(start)
	log.Info("search completed",
		"query", query,
		"agents", len(results.Agents),
		"messages", len(results.Messages),
		"other", len(results.Other),
		"latency_ms", took.Milliseconds(),
	)
	h.countQuery("ok")
	if h.metrics != nil {
		h.metrics.SearchLatency.Observe(took.Seconds())
		h.metrics.SearchResultsCount.WithLabelValues("agents").Observe(float64(len(results.Agents)))
		h.metrics.SearchResultsCount.WithLabelValues("messages").Observe(float64(len(results.Messages)))
		h.metrics.SearchResultsCount.WithLabelValues("other").Observe(float64(len(results.Other)))
	}
	if h.history != nil {
		h.history.Record(ctx, query)
	}
	if h.collector != nil {
		h.collector.Track(events.SearchEvent{
			Query:       query,
			AgentHits:   len(results.Agents),
			MessageHits: len(results.Messages),
			OtherHits:   len(results.Other),
			TotalHits:   results.Total(),
			LatencyMs:   took.Milliseconds(),
			RequestID:   middleware.GetRequestID(ctx),
			Timestamp:   time.Now().UTC(),
		})
	}

	h.writeJSON(w, http.StatusOK, &SearchResponse{
		Query:    query,
		Agents:   results.Agents,
		Messages: results.Messages,
		Other:    results.Other,
		TookMs:   took.Milliseconds(),
	})
}

// History handles GET /api/v1/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"queries": []string{}})
		return
	}
	queries, err := h.history.Recent(r.Context())
	if err != nil {
		h.logger.Error("failed to load query history", "error", err)
		h.writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if queries == nil {
		queries = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"queries": queries})
}

// ClearHistory handles DELETE /api/v1/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	if err := h.history.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear query history", "error", err)
		h.writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) countQuery(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
