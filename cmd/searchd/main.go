package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/openchat-labs/chatsearch/internal/engine"
	"github.com/openchat-labs/chatsearch/internal/events"
	"github.com/openchat-labs/chatsearch/internal/handler"
	"github.com/openchat-labs/chatsearch/internal/history"
	"github.com/openchat-labs/chatsearch/internal/notify"
	"github.com/openchat-labs/chatsearch/internal/orchestrator"
	"github.com/openchat-labs/chatsearch/internal/source"
	"github.com/openchat-labs/chatsearch/pkg/config"
	"github.com/openchat-labs/chatsearch/pkg/health"
	"github.com/openchat-labs/chatsearch/pkg/kafka"
	"github.com/openchat-labs/chatsearch/pkg/logger"
	"github.com/openchat-labs/chatsearch/pkg/metrics"
	"github.com/openchat-labs/chatsearch/pkg/middleware"
	"github.com/openchat-labs/chatsearch/pkg/postgres"
	pkgredis "github.com/openchat-labs/chatsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()
	slog.Info("postgres connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	sources := []source.Source{
		source.NewAgentSource(pg.DB),
		source.NewMessageSource(pg.DB),
		source.NewFileSource(pg.DB),
		source.NewArticleSource(pg.DB),
		source.NewCreationSource(pg.DB),
	}
	eng := engine.New[source.Ref]()
	orch := orchestrator.New(eng, sources, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener := notify.NewListener(cfg.Kafka, orch.MarkDirty, m)
	go func() {
		if err := listener.Start(ctx); err != nil {
			slog.Error("change listener error", "error", err)
		}
	}()

	var hist *history.Store
	var redisClient *pkgredis.Client
	if cfg.Search.HistoryEnabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query history disabled", "error", err)
		} else {
			defer redisClient.Close()
			hist = history.New(redisClient, m)
			slog.Info("query history enabled", "addr", cfg.Redis.Addr)
		}
	}

	eventProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
	defer eventProducer.Close()
	collector := events.NewCollector(eventProducer, 100, 0)
	collector.Start(ctx)
	slog.Info("event collector started", "topic", cfg.Kafka.Topics.SearchEvents)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pg.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if orch.Dirty() {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index stale"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents", eng.Len()),
		}
	})

	h := handler.New(orch, hist, collector, m)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/history", h.History)
	mux.HandleFunc("DELETE /api/v1/history", h.ClearHistory)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Search.RequestTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	collector.Wait()
	slog.Info("search service stopped")
}
