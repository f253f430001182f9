package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithValue_CopyOnWrite(t *testing.T) {
	parent := WithValue(context.Background(), "requestId", "r-1")
	child := WithValue(parent, "loginId", "alice")

	assert.Equal(t, "r-1", Value(child, "requestId"))
	assert.Equal(t, "alice", Value(child, "loginId"))

	// Parent must not see the child's entry.
	assert.False(t, ContainsKey(parent, "loginId"))
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := WithValues(context.Background(), map[string]string{
		"requestId": "r-1",
		"ipAddress": "10.0.0.1",
	})

	snap := Snapshot(ctx)
	snap["requestId"] = "tampered"
	snap["extra"] = "x"

	assert.Equal(t, "r-1", Value(ctx, "requestId"))
	assert.False(t, ContainsKey(ctx, "extra"))
}

func TestSnapshot_EmptyContext(t *testing.T) {
	snap := Snapshot(context.Background())
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestContainsKey_DistinguishesEmptyValue(t *testing.T) {
	ctx := WithValue(context.Background(), "loginId", "")
	assert.True(t, ContainsKey(ctx, "loginId"))
	assert.False(t, ContainsKey(ctx, "missing"))
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
}
