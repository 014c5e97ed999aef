package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kizofa/kizofa/internal/auth"
	"github.com/kizofa/kizofa/internal/metrics"
	"github.com/kizofa/kizofa/internal/model"
	"github.com/kizofa/kizofa/internal/token"
)

// TokenValidator resolves a bearer token to a verified principal.
// *service.AuthService satisfies it.
type TokenValidator interface {
	ValidateToken(raw string) (*model.Principal, error)
}

// AuthConfig holds configuration for the bearer auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  TokenValidator
	Metrics metrics.Recorder
}

// BearerAuth returns a middleware that authenticates requests carrying a
// bearer token. The verification failure kind is logged and counted, but
// the response is a uniform 401 regardless of why the token was rejected.
func BearerAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearerToken(r)
			if raw == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			principal, err := cfg.Tokens.ValidateToken(raw)
			if err != nil {
				kind := rejectionKind(err)
				recorder.IncTokenRejected(kind)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", kind),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectionKind maps a token verification error to its metric label.
func rejectionKind(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return metrics.TokenRejectedExpired
	case errors.Is(err, token.ErrInvalidSignature):
		return metrics.TokenRejectedInvalidSignature
	default:
		return metrics.TokenRejectedMalformed
	}
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing token"}}`))
}
