package middleware

import (
	"fmt"
	"net/http"

	"github.com/kizofa/kizofa/internal/auth"
	"github.com/kizofa/kizofa/internal/model"
)

// RequireRole returns middleware that enforces the principal's role.
// Must be applied after BearerAuth.
func RequireRole(required model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if principal == nil {
				writeRoleError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if principal.Role != required {
				writeRoleError(w, http.StatusForbidden, "FORBIDDEN",
					fmt.Sprintf("Insufficient permissions. Required role: %s", required))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only routes.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// writeRoleError writes a role-related error response.
func writeRoleError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":{"code":"%s","message":"%s"}}`, code, message)))
}
