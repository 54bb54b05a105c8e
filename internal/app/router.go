package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/catalog"
	"github.com/modelgate/modelgate/internal/menu"
	"github.com/modelgate/modelgate/internal/observability"
	"github.com/modelgate/modelgate/internal/rbac"
	"github.com/modelgate/modelgate/internal/shared"
	"github.com/modelgate/modelgate/internal/users"
	"github.com/modelgate/modelgate/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	RateLimiter    *shared.RateLimiter
	Authenticator  *auth.Authenticator
	AuthHandler    *auth.Handler
	UsersHandler   *users.Handler
	RBACHandler    *rbac.Handler
	MenuHandler    *menu.Handler
	CatalogHandler *catalog.Handler
	JobHandler     *jobs.Handler
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with gateway defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		if params.RateLimiter != nil {
			r.Use(UserRateLimit(params.Logger, params.RateLimiter))
		}
		r.Route("/v1", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser)
				params.AuthHandler.MountAPIRoutes(r)
				params.UsersHandler.MountRoutes(r)
				params.RBACHandler.MountRoutes(r)
				params.MenuHandler.MountRoutes(r)
				params.CatalogHandler.MountRoutes(r)
				if params.JobHandler != nil {
					r.Route("/jobs", params.JobHandler.MountRoutes)
				}
			})
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
