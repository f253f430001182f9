package cache

import (
	"context"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sullis/logging-log4j-audit/internal/catalog"
)

type countingSource struct {
	loads int
	cat   *catalog.Catalog
	err   error
}

func (s *countingSource) Load(context.Context) (*catalog.Catalog, error) {
	s.loads++
	return s.cat, s.err
}

// An unreachable Redis must degrade to the wrapped source, not fail the load.
func TestCachedSource_RedisDownFallsBackToSource(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	source := &countingSource{cat: &catalog.Catalog{
		Events: []catalog.Event{{Name: "UserLogin"}},
	}}
	cached := New(source, client, slog.New(slog.DiscardHandler))

	cat, err := cached.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cat.Events, 1)
	assert.Equal(t, "UserLogin", cat.Events[0].Name)
	assert.Equal(t, 1, source.loads)
}

func TestCachedSource_SourceErrorPropagates(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	source := &countingSource{err: assert.AnError}
	cached := New(source, client, slog.New(slog.DiscardHandler))

	_, err := cached.Load(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
