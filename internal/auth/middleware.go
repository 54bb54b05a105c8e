package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modelgate/modelgate/internal/observability"
	"github.com/modelgate/modelgate/internal/platform/httpx"
	"github.com/modelgate/modelgate/internal/shared"
)

const bearerPrefix = "Bearer "

// Authenticator resolves the request identity. Strategies are tried in
// fixed order, first success wins: bearer token, then session cookie. A
// present-but-invalid token is terminal; it never falls through to the
// session path.
type Authenticator struct {
	logger  *slog.Logger
	service *Service
	auditor shared.Recorder
	metrics *observability.Metrics
}

// NewAuthenticator constructs an Authenticator. metrics may be nil.
func NewAuthenticator(logger *slog.Logger, service *Service, auditor shared.Recorder, metrics *observability.Metrics) *Authenticator {
	if auditor == nil {
		auditor = shared.NoopAuditor{}
	}
	return &Authenticator{logger: logger, service: service, auditor: auditor, metrics: metrics}
}

// strategy attempts one authentication path. identity is non-nil on
// success; terminal means the strategy already wrote a response.
type strategy func(w http.ResponseWriter, r *http.Request) (identity *Identity, terminal bool)

// Middleware attaches the resolved identity to the request context.
// Anonymous requests pass through with no identity; routes that need one
// reject themselves (registration and sign-in must stay reachable).
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, try := range []strategy{a.tryBearerToken, a.trySession} {
			identity, terminal := try(w, r)
			if terminal {
				return
			}
			if identity != nil {
				next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) tryBearerToken(w http.ResponseWriter, r *http.Request) (*Identity, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, false
	}
	token := strings.TrimPrefix(header, bearerPrefix)

	user, err := a.service.ValidateToken(r.Context(), token)
	if err != nil {
		var tokenErr *TokenError
		if errors.As(err, &tokenErr) {
			_ = a.auditor.Record(r.Context(), shared.AuditLog{
				Action: tokenErr.Kind,
				Entity: "api_key",
				Meta:   map[string]any{"path": r.URL.Path, "remote": r.RemoteAddr},
			})
			a.metrics.AuthFailure(tokenErr.Kind)
			a.logger.Warn("api key rejected", slog.String("kind", tokenErr.Kind))
			httpx.InvalidAPIKey(w)
			return nil, true
		}
		a.logger.Error("token validation", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
		return nil, true
	}

	return &Identity{User: user}, false
}

func (a *Authenticator) trySession(w http.ResponseWriter, r *http.Request) (*Identity, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return nil, false
	}

	user, err := a.service.ResolveSessionUser(r.Context(), sess.User())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Session points at a deleted user; treat as anonymous.
			sess.SetUser("")
			return nil, false
		}
		a.logger.Error("session resolution", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
		return nil, true
	}

	return &Identity{User: user, Session: sess}, false
}

// RequireUser rejects anonymous requests with a 401 envelope.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
