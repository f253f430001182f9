package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sullis/logging-log4j-audit/internal/audit"
)

func TestSink_EmitAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Emit(ctx, audit.Message{ID: "1", Name: "UserLogin"}))
	require.NoError(t, s.Emit(ctx, audit.Message{ID: "2", Name: "Transfer"}))

	msgs := s.List()
	require.Len(t, msgs, 2)
	assert.Equal(t, "UserLogin", msgs[0].Name)
	assert.Equal(t, "Transfer", msgs[1].Name)
}

func TestSink_ListReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Emit(context.Background(), audit.Message{ID: "1", Name: "UserLogin"}))

	msgs := s.List()
	msgs[0].Name = "tampered"

	assert.Equal(t, "UserLogin", s.List()[0].Name)
}

func TestSink_ListRecent(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.Emit(ctx, audit.Message{ID: id}))
	}

	recent := s.ListRecent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].ID)
	assert.Equal(t, "3", recent[1].ID)

	assert.Len(t, s.ListRecent(10), 3)
}

func TestSink_ConcurrentEmit(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Emit(context.Background(), audit.Message{Name: "UserLogin"})
		}()
	}
	wg.Wait()
	assert.Len(t, s.List(), 50)
}
