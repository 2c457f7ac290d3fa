package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openchat-labs/chatsearch/internal/orchestrator"
)

type stubSearcher struct {
	results *orchestrator.Results
	err     error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query, conversationID string) (*orchestrator.Results, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func emptyResults() *orchestrator.Results {
	return &orchestrator.Results{
		Agents:   []orchestrator.Result{},
		Messages: []orchestrator.Result{},
		Other:    []orchestrator.Result{},
	}
}

func TestSearchRequiresQueryParam(t *testing.T) {
	h := New(&stubSearcher{results: emptyResults()}, nil, nil, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d without q, want 400", rec.Code)
	}
}

func TestSearchBlankQueryReturnsEmptyBuckets(t *testing.T) {
	h := New(&stubSearcher{results: emptyResults()}, nil, nil, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=++", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Agents) != 0 || len(resp.Messages) != 0 || len(resp.Other) != 0 {
		t.Errorf("non-empty buckets for a blank query: %+v", resp)
	}
}

func TestSearchReturnsBuckets(t *testing.T) {
	results := emptyResults()
	results.Agents = append(results.Agents, orchestrator.Result{
		ID: "a1", Title: "Sora Helper", SourceType: "agent", Score: 1.5,
	})
	stub := &stubSearcher{results: results}
	h := New(stub, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=sora&conversation_id=c1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Query != "sora" {
		t.Errorf("Query = %q, want sora", resp.Query)
	}
	if len(resp.Agents) != 1 || resp.Agents[0].ID != "a1" {
		t.Errorf("Agents = %+v, want the stubbed agent", resp.Agents)
	}
	if len(stub.queries) != 1 || stub.queries[0] != "sora" {
		t.Errorf("searcher received queries %v, want [sora]", stub.queries)
	}
}

func TestSearchErrorReturns500(t *testing.T) {
	h := New(&stubSearcher{err: errors.New("source unavailable")}, nil, nil, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=sora", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	h := New(&stubSearcher{results: emptyResults()}, nil, nil, nil)
	rec := httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Queries []string `json:"queries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Queries) != 0 {
		t.Errorf("Queries = %v with history disabled, want empty", resp.Queries)
	}
}
