// Package cache provides a Redis read-through decorator for catalog sources.
// Several audit service replicas can share one loaded catalog instead of each
// hitting the catalog database on startup. Redis being down degrades to the
// wrapped source; it never fails a load.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/sullis/logging-log4j-audit/internal/catalog"
)

const defaultTTL = 5 * time.Minute

// CachedSource wraps a catalog.Source with a Redis cache.
type CachedSource struct {
	source catalog.Source
	client *redis.Client
	logger *slog.Logger
	key    string
	ttl    time.Duration
}

// Option configures a CachedSource.
type Option func(*CachedSource)

// WithTTL overrides the default cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *CachedSource) { s.ttl = ttl }
}

// WithKey overrides the cache key.
func WithKey(key string) Option {
	return func(s *CachedSource) { s.key = key }
}

// New creates a read-through cache over source.
func New(source catalog.Source, client *redis.Client, logger *slog.Logger, opts ...Option) *CachedSource {
	s := &CachedSource{
		source: source,
		client: client,
		logger: logger,
		key:    "audit:catalog",
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the cached catalog document when present, otherwise loads from
// the wrapped source and populates the cache. The cached form is the same
// YAML document the file source reads, so catalog.Parse validates both paths.
func (s *CachedSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == nil {
		cat, parseErr := catalog.Parse(data)
		if parseErr == nil {
			return cat, nil
		}
		s.logger.WarnContext(ctx, "cached catalog is unparseable, reloading from source",
			"key", s.key,
			"error", parseErr,
		)
	} else if err != redis.Nil {
		s.logger.WarnContext(ctx, "catalog cache read failed, loading from source",
			"key", s.key,
			"error", err,
		)
	}

	cat, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := yaml.Marshal(cat); err == nil {
		if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed",
				"key", s.key,
				"error", err,
			)
		}
	}
	return cat, nil
}
