// Package engine implements the in-memory BM25 ranking engine: an inverted
// index over opaque documents plus Okapi BM25 scoring. The engine knows
// nothing about entity types; callers attach an arbitrary metadata payload to
// each document and get it back on search hits.
package engine

import (
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/openchat-labs/chatsearch/internal/engine/tokenizer"
)

// BM25 saturation and length-normalization tuning. Fixed, not configurable.
const (
	k1 = 1.2
	b  = 0.75
)

// Document is an indexed entry. Tokens keeps every term occurrence so term
// frequency can be recounted at query time.
type Document[M any] struct {
	ID     string
	Tokens []string
	Length int
	Meta   M
}

// Hit is a scored search result carrying the document's metadata payload.
type Hit[M any] struct {
	ID    string
	Score float64
	Meta  M
}

// Engine owns the document map, the inverted index, and the derived corpus
// statistics. The two index structures are only ever mutated together, so
// every posting id resolves to a stored document. All state is guarded by a
// single mutex; the engine is safe for concurrent use.
type Engine[M any] struct {
	mu       sync.Mutex
	docs     map[string]*Document[M]
	postings map[string][]string

	// Derived, recomputed lazily at most once per dirty cycle.
	avgdl      float64
	idf        map[string]float64
	statsDirty bool
}

// New creates an empty Engine.
func New[M any]() *Engine[M] {
	return &Engine[M]{
		docs:     make(map[string]*Document[M]),
		postings: make(map[string][]string),
		idf:      make(map[string]float64),
	}
}

// Clear drops all documents, postings, and statistic caches. Subsequent
// searches return nothing until the engine is repopulated.
func (e *Engine[M]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs = make(map[string]*Document[M])
	e.postings = make(map[string][]string)
	e.idf = make(map[string]float64)
	e.avgdl = 0
	e.statsDirty = false
}

// Add tokenizes text and indexes it under id. Text that yields no tokens
// (empty, whitespace, or punctuation only) is a no-op. Adding an existing id
// overwrites the stored document but does not retract its old postings, so a
// full rebuild must Clear first.
func (e *Engine[M]) Add(id string, text string, meta M) {
	tokens := tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[id] = &Document[M]{
		ID:     id,
		Tokens: tokens,
		Length: len(tokens),
		Meta:   meta,
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if !slices.Contains(e.postings[token], id) {
			e.postings[token] = append(e.postings[token], id)
		}
	}
	e.statsDirty = true
}

// Len returns the number of indexed documents.
func (e *Engine[M]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.docs)
}

// Search scores every document containing at least one query term with Okapi
// BM25 and returns hits in descending score order (ties broken by id). An
// empty or whitespace-only query, or an empty index, returns nil.
func (e *Engine[M]) Search(query string) []Hit[M] {
	terms := tokenizer.Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.docs) == 0 {
		return nil
	}
	if e.statsDirty {
		e.recalculateStats()
	}

	scores := make(map[string]float64)
	for _, term := range terms {
		ids := e.postings[term]
		if len(ids) == 0 {
			continue
		}
		idf := e.termIDF(term, len(ids))
		for _, id := range ids {
			doc, ok := e.docs[id]
			if !ok {
				continue
			}
			tf := termFrequency(doc.Tokens, term)
			if tf == 0 {
				// Stale posting left behind by an overwrite.
				continue
			}
			norm := tf + k1*(1-b+b*float64(doc.Length)/e.avgdl)
			scores[id] += idf * (tf * (k1 + 1)) / norm
		}
	}

	hits := make([]Hit[M], 0, len(scores))
	for id, score := range scores {
		hits = append(hits, Hit[M]{ID: id, Score: score, Meta: e.docs[id].Meta})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// termIDF returns the cached inverse document frequency for term, computing
// and caching it on first use after a stats reset.
func (e *Engine[M]) termIDF(term string, docFreq int) float64 {
	if idf, ok := e.idf[term]; ok {
		return idf
	}
	n := float64(len(e.docs))
	nt := float64(docFreq)
	idf := math.Log((n-nt+0.5)/(nt+0.5) + 1)
	e.idf[term] = idf
	return idf
}

// recalculateStats recomputes the average document length and resets the IDF
// cache. Runs at most once per dirty cycle, before the first search after
// any add.
func (e *Engine[M]) recalculateStats() {
	total := 0
	for _, doc := range e.docs {
		total += doc.Length
	}
	divisor := len(e.docs)
	if divisor < 1 {
		divisor = 1
	}
	e.avgdl = float64(total) / float64(divisor)
	e.idf = make(map[string]float64)
	e.statsDirty = false
}

func termFrequency(tokens []string, term string) float64 {
	count := 0
	for _, token := range tokens {
		if token == term {
			count++
		}
	}
	return float64(count)
}
