// Command server runs the audit event service: it loads the event catalog,
// wires the validation engine to the configured sink, and serves the HTTP
// API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sullis/logging-log4j-audit/internal/audit"
	"github.com/sullis/logging-log4j-audit/internal/audit/handler"
	"github.com/sullis/logging-log4j-audit/internal/audit/sink/buffered"
	"github.com/sullis/logging-log4j-audit/internal/audit/sink/failover"
	"github.com/sullis/logging-log4j-audit/internal/audit/sink/jsonwriter"
	"github.com/sullis/logging-log4j-audit/internal/audit/sink/kafka"
	memorysink "github.com/sullis/logging-log4j-audit/internal/audit/sink/memory"
	postgressink "github.com/sullis/logging-log4j-audit/internal/audit/sink/postgres"
	"github.com/sullis/logging-log4j-audit/internal/catalog"
	"github.com/sullis/logging-log4j-audit/internal/catalog/cache"
	catalogstore "github.com/sullis/logging-log4j-audit/internal/catalog/store/postgres"
	"github.com/sullis/logging-log4j-audit/internal/constraints"
	"github.com/sullis/logging-log4j-audit/internal/platform/config"
	"github.com/sullis/logging-log4j-audit/internal/platform/httpserver"
	"github.com/sullis/logging-log4j-audit/internal/platform/logger"
	"github.com/sullis/logging-log4j-audit/internal/platform/metrics"
	"github.com/sullis/logging-log4j-audit/internal/platform/middleware"
	platformredis "github.com/sullis/logging-log4j-audit/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()

	mgr, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	snk, store, closeSink, err := buildSink(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build sink: %w", err)
	}
	defer closeSink()

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.SinkBuffer > 0 {
		b := buffered.New(snk, cfg.SinkBuffer, log)
		g.Go(func() error {
			if err := b.Run(gCtx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		snk = b
	}

	m := metrics.New()
	auditLogger := audit.New(mgr, constraints.NewDefaultRegistry(log), snk, log,
		audit.WithMetrics(m),
		audit.WithMaxNameLength(cfg.MaxNameLength),
	)

	router := buildRouter(cfg, log, m, mgr, auditLogger, store)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting audit service",
		"addr", cfg.Addr,
		"sink", cfg.Sink,
		"events", len(mgr.EventNames()),
	)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadCatalog builds the catalog source chain (file or postgres, optionally
// fronted by the redis cache), loads it once, and indexes it.
func loadCatalog(ctx context.Context, cfg config.Config, log *slog.Logger) (catalog.Manager, error) {
	var source catalog.Source
	if cfg.CatalogDSN != "" {
		db, err := sql.Open("pgx", cfg.CatalogDSN)
		if err != nil {
			return nil, fmt.Errorf("open catalog database: %w", err)
		}
		source = catalogstore.New(db)
	} else {
		source = catalog.FileSource{Path: cfg.CatalogPath}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		source = cache.New(source, redisClient.Client, log, cache.WithTTL(cfg.Redis.CatalogTTL))
	}

	cat, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewManager(cat), nil
}

// buildSink constructs the configured emission target, optionally wrapped in
// a circuit-breaking failover to a second sink. The second return value is
// non-nil when the primary sink supports reading back recent messages.
func buildSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, handler.MessageStore, func(), error) {
	primary, store, closePrimary, err := buildNamedSink(ctx, cfg, cfg.Sink)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.SinkFallback == "" || cfg.SinkFallback == cfg.Sink {
		return primary, store, closePrimary, nil
	}

	fallback, _, closeFallback, err := buildNamedSink(ctx, cfg, cfg.SinkFallback)
	if err != nil {
		closePrimary()
		return nil, nil, nil, err
	}
	closeBoth := func() {
		closePrimary()
		closeFallback()
	}
	return failover.New(primary, fallback, log), store, closeBoth, nil
}

func buildNamedSink(ctx context.Context, cfg config.Config, name string) (audit.Sink, handler.MessageStore, func(), error) {
	noop := func() {}
	switch name {
	case "memory":
		s := memorysink.New()
		return s, memoryStore{s}, noop, nil
	case "stdout":
		return jsonwriter.New(os.Stdout), nil, noop, nil
	case "kafka":
		s, err := kafka.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, s.Close, nil
	case "postgres":
		db, err := sql.Open("pgx", cfg.SinkDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		s := postgressink.New(db)
		return s, s, func() { _ = db.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown sink %q", name)
	}
}

// memoryStore adapts the memory sink to the handler's store interface.
type memoryStore struct {
	sink *memorysink.Sink
}

func (s memoryStore) ListRecent(_ context.Context, limit int) ([]audit.Message, error) {
	return s.sink.ListRecent(limit), nil
}

func buildRouter(cfg config.Config, log *slog.Logger, m *metrics.Metrics, mgr catalog.Manager, auditLogger *audit.Logger, store handler.MessageStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(m))

	handler.RegisterHealth(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	contextKeys := make([]string, 0)
	for name := range mgr.GetRequestContextAttributes() {
		contextKeys = append(contextKeys, name)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ClientMetadata)
		r.Use(middleware.ContextHeaders(cfg.ContextHeaderPrefix, contextKeys))
		r.Use(middleware.RequireAuth(buildAuthenticator(cfg), log))
		handler.New(auditLogger, store, log).Register(r)
	})

	return r
}

func buildAuthenticator(cfg config.Config) middleware.Authenticator {
	if cfg.JWTSigningKey != "" {
		return middleware.NewJWTAuthenticator([]byte(cfg.JWTSigningKey))
	}
	if cfg.AuthToken != "" {
		return middleware.NewStaticTokenAuthenticator(cfg.AuthToken)
	}
	return nil
}
