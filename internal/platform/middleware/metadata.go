package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"github.com/sullis/logging-log4j-audit/pkg/requestcontext"
)

// DefaultContextHeaderPrefix marks request headers whose values are imported
// into the ambient request context.
const DefaultContextHeaderPrefix = "Audit-"

// ContextHeaders imports prefixed headers into the request context for every
// context attribute the catalog knows: "Audit-RequestId: abc" becomes the
// context value requestId=abc, which catalogs can then require or constrain.
// Driving the import from the known key list keeps header lookup
// case-insensitive; net/http canonicalizes header casing on the wire.
// An empty prefix falls back to the default.
func ContextHeaders(prefix string, keys []string) func(http.Handler) http.Handler {
	if prefix == "" {
		prefix = DefaultContextHeaderPrefix
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			values := map[string]string{}
			for _, key := range keys {
				if v := r.Header.Get(prefix + key); v != "" {
					values[key] = v
				}
			}
			if len(values) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithValues(r.Context(), values)))
		})
	}
}

// ClientMetadata derives the caller's network address and user agent details
// and stores them as request context values, so catalogs can require them on
// events without every client sending them explicitly.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := map[string]string{
			"ipAddress": clientIP(r),
		}
		if raw := r.Header.Get("User-Agent"); raw != "" {
			values["userAgent"] = raw
			ua := useragent.New(raw)
			if name, version := ua.Browser(); name != "" {
				values["browser"] = name
				if version != "" {
					values["browserVersion"] = version
				}
			}
			if os := ua.OS(); os != "" {
				values["clientOS"] = os
			}
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithValues(r.Context(), values)))
	})
}

// clientIP extracts the original client address, looking through proxies.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
