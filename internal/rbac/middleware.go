package rbac

import (
	"log/slog"
	"net/http"

	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/observability"
	"github.com/modelgate/modelgate/internal/platform/httpx"
)

// Middleware gates privileged routes behind a permission check.
// Metrics may be nil.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Require ensures the current user holds a permission for the given
// (resource, action) pair. Anonymous callers get 401; authenticated but
// unauthorized callers get the Forbidden envelope. A store failure
// answers 500, never allow.
func (m Middleware) Require(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			if user == nil {
				httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ok, err := m.Service.HasPermission(r.Context(), user.ID, resource, action)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("permission check", slog.String("resource", resource), slog.String("action", action), slog.Any("error", err))
				}
				httpx.Fail(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !ok {
				m.Metrics.PermissionDenied(resource, action)
				httpx.Fail(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
