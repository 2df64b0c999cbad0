package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/scolaris/school-management/internal"
)

// PermissionChecker decides whether an actor holds a permission. The school
// configuration service implements this against the active school's role
// permission map.
type PermissionChecker interface {
	HasPermission(ctx context.Context, actor *internal.Actor, permissionID string) bool
}

// RequirePermissions creates a middleware that lets the request through when
// the actor holds at least one of the given permissions.
func RequirePermissions(checker PermissionChecker, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := internal.ActorFromContext(r.Context())
			if !ok || actor == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed := false
			for _, requiredPerm := range permissions {
				if checker.HasPermission(r.Context(), actor, requiredPerm) {
					allowed = true
					break
				}
			}

			if !allowed {
				slog.Warn("access denied: actor lacks required permissions",
					"user_id", actor.ID,
					"role", actor.Role,
					"required_permissions", permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
