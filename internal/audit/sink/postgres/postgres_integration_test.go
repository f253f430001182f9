//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sullis/logging-log4j-audit/internal/audit"
	"github.com/sullis/logging-log4j-audit/internal/audit/sink/postgres"
	"github.com/sullis/logging-log4j-audit/pkg/testutil/containers"
)

const auditSchema = `
CREATE TABLE audit_events (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	catalog_id TEXT NOT NULL,
	request_id TEXT NOT NULL DEFAULT '',
	timestamp  TIMESTAMPTZ NOT NULL,
	attributes JSONB NOT NULL
)`

func testMessage(id string, at time.Time) audit.Message {
	return audit.Message{
		ID:        id,
		Name:      "UserLogin",
		CatalogID: "DEFAULT",
		RequestID: "r-1",
		Timestamp: at,
		Attributes: map[string]string{
			"userId": "alice",
		},
	}
}

func TestPostgresSink_EmitAndListRecent(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	pg.ExecSQL(t, auditSchema)
	store := postgres.New(pg.DB)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Emit(ctx, testMessage("msg-1", base)))
	require.NoError(t, store.Emit(ctx, testMessage("msg-2", base.Add(time.Minute))))
	require.NoError(t, store.Emit(ctx, testMessage("msg-3", base.Add(2*time.Minute))))

	messages, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-3", messages[0].ID)
	assert.Equal(t, "msg-2", messages[1].ID)
	assert.Equal(t, map[string]string{"userId": "alice"}, messages[0].Attributes)
}

func TestPostgresSink_EmitIdempotentOnID(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	pg.ExecSQL(t, auditSchema)
	store := postgres.New(pg.DB)
	ctx := context.Background()

	msg := testMessage("msg-1", time.Now().UTC())
	require.NoError(t, store.Emit(ctx, msg))
	require.NoError(t, store.Emit(ctx, msg))

	messages, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}
