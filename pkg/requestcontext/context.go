// Package requestcontext carries ambient audit data through context.Context.
//
// Audit events are validated against two inputs: the attributes supplied by
// the caller, and a per-request key/value map populated by middleware (client
// IP, user agent, imported Audit-* headers) or by the caller directly. This
// package owns that map. Values are copied on write, so a context handed to a
// concurrent validation can never observe later mutations.
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithValue(ctx, "ipAddress", ip)
//
// Usage in the validator (read-only):
//
//	snapshot := requestcontext.Snapshot(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithValues(ctx, map[string]string{"requestId": "r-1"})
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	auditValuesKey struct{}
	requestIDKey   struct{}
)

// WithValue returns a context whose audit map carries key=value. The parent
// map is copied, never mutated.
func WithValue(ctx context.Context, key, value string) context.Context {
	values := cloneValues(ctx, 1)
	values[key] = value
	return context.WithValue(ctx, auditValuesKey{}, values)
}

// WithValues merges all entries of m into the context's audit map.
func WithValues(ctx context.Context, m map[string]string) context.Context {
	if len(m) == 0 {
		return ctx
	}
	values := cloneValues(ctx, len(m))
	for k, v := range m {
		values[k] = v
	}
	return context.WithValue(ctx, auditValuesKey{}, values)
}

// Value retrieves a single audit map entry. Returns "" if absent.
func Value(ctx context.Context, key string) string {
	if values, ok := ctx.Value(auditValuesKey{}).(map[string]string); ok {
		return values[key]
	}
	return ""
}

// ContainsKey reports whether the audit map has an entry for key.
func ContainsKey(ctx context.Context, key string) bool {
	if values, ok := ctx.Value(auditValuesKey{}).(map[string]string); ok {
		_, present := values[key]
		return present
	}
	return false
}

// Snapshot returns a copy of the audit map. Callers may range and mutate the
// result freely; the context's own map is unaffected.
func Snapshot(ctx context.Context) map[string]string {
	values, ok := ctx.Value(auditValuesKey{}).(map[string]string)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func cloneValues(ctx context.Context, extra int) map[string]string {
	existing, _ := ctx.Value(auditValuesKey{}).(map[string]string)
	values := make(map[string]string, len(existing)+extra)
	for k, v := range existing {
		values[k] = v
	}
	return values
}

// RequestID retrieves the correlation ID set by the request middleware.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
