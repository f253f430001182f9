package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator validates bearer tokens presented by audit clients.
type Authenticator interface {
	Authenticate(token string) error
}

// StaticTokenAuthenticator accepts a single shared secret. Comparison is
// constant time so the secret cannot be recovered byte by byte.
type StaticTokenAuthenticator struct {
	secret string
}

// NewStaticTokenAuthenticator creates an authenticator for a shared secret.
func NewStaticTokenAuthenticator(secret string) *StaticTokenAuthenticator {
	return &StaticTokenAuthenticator{secret: secret}
}

func (a *StaticTokenAuthenticator) Authenticate(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.secret)) != 1 {
		return errors.New("token does not match configured secret")
	}
	return nil
}

// JWTAuthenticator accepts HS256-signed tokens from clients holding the
// signing key.
type JWTAuthenticator struct {
	signingKey []byte
}

// NewJWTAuthenticator creates an authenticator for HS256 tokens.
func NewJWTAuthenticator(signingKey []byte) *JWTAuthenticator {
	return &JWTAuthenticator{signingKey: signingKey}
}

func (a *JWTAuthenticator) Authenticate(token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return errors.New("token is not valid")
	}
	return nil
}

// RequireAuth rejects requests whose Authorization header does not carry a
// bearer token accepted by the authenticator. A nil authenticator disables
// authentication entirely, for local development.
func RequireAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			if err := auth.Authenticate(token); err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"unauthorized","error_description":"%s"}`, description))
}
