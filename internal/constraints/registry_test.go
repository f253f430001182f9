package constraints

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewDefaultRegistry(slog.New(slog.DiscardHandler))
}

func TestRegistry_UnregisteredTypeIsNoOp(t *testing.T) {
	r := newTestRegistry()
	errs := r.Validate(false, "retiredType", "userId", "alice", "")
	assert.Empty(t, errs)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := newTestRegistry()
	r.Register("maxLength", func(bool, string, string, string) []string {
		return []string{"always fails"}
	})
	errs := r.Validate(false, "maxLength", "userId", "a", "100")
	require.Len(t, errs, 1)
	assert.Equal(t, "always fails", errs[0])
}

func TestRegistry_DispatchesByType(t *testing.T) {
	r := newTestRegistry()
	assert.Empty(t, r.Validate(false, "maxLength", "userId", "alice", "8"))
	assert.NotEmpty(t, r.Validate(false, "maxLength", "userId", "alice12345", "8"))
}

func TestMaxLength(t *testing.T) {
	assert.Empty(t, MaxLength(false, "userId", "alice", "8"))

	errs := MaxLength(false, "userId", "alice12345", "8")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "userId")
	assert.Contains(t, errs[0], "maximum length of 8")

	errs = MaxLength(false, "userId", "alice", "not-a-number")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid argument")
}

func TestMinLength(t *testing.T) {
	assert.Empty(t, MinLength(false, "userId", "alice", "3"))
	assert.NotEmpty(t, MinLength(false, "userId", "al", "3"))
}

func TestPattern(t *testing.T) {
	assert.Empty(t, Pattern(false, "ipAddress", "10.0.0.1", `^[0-9.]+$`))

	errs := Pattern(false, "ipAddress", "not-an-ip", `^[0-9.]+$`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "does not match pattern")

	errs = Pattern(false, "ipAddress", "x", `^[`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid expression")
}

func TestMinMaxValue(t *testing.T) {
	assert.Empty(t, MinValue(false, "amount", "10", "1"))
	assert.NotEmpty(t, MinValue(false, "amount", "0", "1"))
	assert.Empty(t, MaxValue(false, "amount", "10", "100"))
	assert.NotEmpty(t, MaxValue(false, "amount", "101", "100"))

	errs := MaxValue(false, "amount", "abc", "100")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not numeric")
}

func TestEnum(t *testing.T) {
	assert.Empty(t, Enum(false, "status", "active", "active|inactive"))

	errs := Enum(false, "status", "deleted", "active|inactive")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "is not one of active|inactive")
}

func TestSubject_ContextAttributePrefix(t *testing.T) {
	errs := MaxLength(true, "requestId", "abcdefghij", "4")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "context attribute requestId")
}
