// Package orchestrator keeps the ranking engine populated from the entity
// sources and serves typed, bucketed search results. It tracks staleness with
// a dirty flag fed by the change-notification feed and collapses concurrent
// rebuild requests into a single in-flight rebuild.
package orchestrator

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/openchat-labs/chatsearch/internal/engine"
	"github.com/openchat-labs/chatsearch/internal/source"
	"github.com/openchat-labs/chatsearch/pkg/metrics"
)

const (
	// chunkSize bounds how many documents are fed to the engine between
	// scheduler yields during a rebuild.
	chunkSize = 50
	// maxPerBucket caps each result bucket.
	maxPerBucket = 10
)

// Orchestrator coordinates index rebuilds and answers bucketed searches.
type Orchestrator struct {
	engine  *engine.Engine[source.Ref]
	sources []source.Source
	metrics *metrics.Metrics
	logger  *slog.Logger

	// dirty counts invalidations since the last successful rebuild; zero
	// means clean. A counter rather than a flag so an invalidation landing
	// mid-rebuild is not wiped out when the rebuild finishes.
	dirty atomic.Int64
	group singleflight.Group
}

// New creates an Orchestrator over the given engine and sources. The index
// starts dirty: the first search triggers the initial build. metrics may be
// nil.
func New(eng *engine.Engine[source.Ref], sources []source.Source, m *metrics.Metrics) *Orchestrator {
	o := &Orchestrator{
		engine:  eng,
		sources: sources,
		metrics: m,
		logger:  slog.Default().With("component", "index-orchestrator"),
	}
	o.dirty.Store(1)
	o.setDirtyGauge(1)
	return o
}

// MarkDirty flags the index as stale. Called by the change feed on any write
// to any watched collection; which collection changed is irrelevant.
func (o *Orchestrator) MarkDirty() {
	o.dirty.Add(1)
	o.setDirtyGauge(1)
}

// Dirty reports whether the index is stale.
func (o *Orchestrator) Dirty() bool {
	return o.dirty.Load() != 0
}

// Search ensures the index is fresh, runs the ranked query, and buckets the
// hits by entity kind. A blank query returns empty buckets without touching
// the index. conversationID, when non-empty, restricts the message bucket to
// that conversation.
func (o *Orchestrator) Search(ctx context.Context, query string, conversationID string) (*Results, error) {
	results := newResults()
	if strings.TrimSpace(query) == "" {
		return results, nil
	}
	if err := o.ensureIndexBuilt(ctx); err != nil {
		return nil, err
	}
	for _, hit := range o.engine.Search(query) {
		results.collect(hit, conversationID)
	}
	return results, nil
}

// ensureIndexBuilt is the dirty-count fast path plus the single-flight
// rebuild slow path: concurrent callers finding a stale index all await the
// same rebuild. The count resets only when the rebuild succeeded AND no new
// invalidation arrived while it ran, so both a failed source fetch and a
// mid-rebuild change event leave the next search to rebuild again.
func (o *Orchestrator) ensureIndexBuilt(ctx context.Context) error {
	if o.dirty.Load() == 0 {
		return nil
	}
	_, err, _ := o.group.Do("rebuild", func() (any, error) {
		generation := o.dirty.Load()
		if generation == 0 {
			return nil, nil
		}
		start := time.Now()
		if err := o.buildIndex(ctx); err != nil {
			if o.metrics != nil {
				o.metrics.RebuildsTotal.WithLabelValues("error").Inc()
			}
			return nil, err
		}
		if o.dirty.CompareAndSwap(generation, 0) {
			o.setDirtyGauge(0)
		}
		if o.metrics != nil {
			o.metrics.RebuildsTotal.WithLabelValues("ok").Inc()
			o.metrics.RebuildDuration.Observe(time.Since(start).Seconds())
			o.metrics.IndexedDocs.Set(float64(o.engine.Len()))
		}
		return nil, nil
	})
	return err
}

// buildIndex pulls a fresh snapshot from every source and feeds the engine in
// bounded chunks, yielding the processor between chunks so a rebuild never
// monopolizes the scheduler. Source errors propagate unwrapped; sources
// processed before the failure stay indexed.
func (o *Orchestrator) buildIndex(ctx context.Context) error {
	o.engine.Clear()
	for _, src := range o.sources {
		items, err := src.List(ctx)
		if err != nil {
			return err
		}
		for start := 0; start < len(items); start += chunkSize {
			end := min(start+chunkSize, len(items))
			for _, item := range items[start:end] {
				o.engine.Add(item.ID, item.Text, item.Ref)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			runtime.Gosched()
		}
		o.logger.Debug("source indexed", "source", src.Name(), "items", len(items))
	}
	o.logger.Info("index rebuilt", "documents", o.engine.Len())
	return nil
}

func (o *Orchestrator) setDirtyGauge(v float64) {
	if o.metrics != nil {
		o.metrics.IndexDirty.Set(v)
	}
}
