// Package history records the last N distinct search queries in Redis. It is
// pure bookkeeping: failures degrade history, never search, and all Redis
// calls run behind a circuit breaker so a flapping Redis cannot add latency
// to every request.
package history

import (
	"context"
	"log/slog"
	"strings"

	pkgredis "github.com/openchat-labs/chatsearch/pkg/redis"
	"github.com/openchat-labs/chatsearch/pkg/metrics"
	"github.com/openchat-labs/chatsearch/pkg/resilience"
)

const (
	historyKey   = "search:history"
	historyLimit = 20
)

// Store keeps the most recent distinct queries, newest first.
type Store struct {
	client  *pkgredis.Client
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Store over the given Redis client. m may be nil.
func New(client *pkgredis.Client, m *metrics.Metrics) *Store {
	return &Store{
		client:  client,
		breaker: resilience.NewCircuitBreaker("query-history", resilience.CircuitBreakerConfig{}),
		metrics: m,
		logger:  slog.Default().With("component", "query-history"),
	}
}

// Record adds query to the front of the history, removing any previous
// occurrence and trimming to the history limit. Blank queries are ignored.
// Errors are logged, not returned.
func (s *Store) Record(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	err := s.breaker.Execute(func() error {
		if err := s.client.LRem(ctx, historyKey, 0, query); err != nil {
			return err
		}
		if err := s.client.LPush(ctx, historyKey, query); err != nil {
			return err
		}
		return s.client.LTrim(ctx, historyKey, 0, historyLimit-1)
	})
	s.countOp("record", err)
	if err != nil {
		s.logger.Warn("failed to record query", "error", err)
	}
}

// Recent returns the stored queries, newest first.
func (s *Store) Recent(ctx context.Context) ([]string, error) {
	var queries []string
	err := s.breaker.Execute(func() error {
		var err error
		queries, err = s.client.LRange(ctx, historyKey, 0, historyLimit-1)
		return err
	})
	s.countOp("recent", err)
	if err != nil {
		return nil, err
	}
	return queries, nil
}

// Clear drops the whole history.
func (s *Store) Clear(ctx context.Context) error {
	err := s.breaker.Execute(func() error {
		return s.client.Del(ctx, historyKey)
	})
	s.countOp("clear", err)
	return err
}

func (s *Store) countOp(op string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.HistoryOpsTotal.WithLabelValues(op, outcome).Inc()
}
