package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgate/modelgate/internal/shared"
)

type recordingAuditor struct {
	logs []shared.AuditLog
}

func (r *recordingAuditor) Record(_ context.Context, log shared.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func newTestAuthenticator(t *testing.T, repo Repository, auditor shared.Recorder) (*Authenticator, *Service) {
	t.Helper()
	svc := newTestService(t, repo)
	return NewAuthenticator(slog.Default(), svc, auditor, nil), svc
}

func identityProbe(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddlewarePassesAnonymousRequestsThrough(t *testing.T) {
	authn, _ := newTestAuthenticator(t, newMockRepository(), nil)

	var identity *Identity
	rr := httptest.NewRecorder()
	authn.Middleware(identityProbe(&identity)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Nil(t, identity)
}

func TestMiddlewareResolvesBearerToken(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1")
	authn, svc := newTestAuthenticator(t, repo, nil)

	token, err := svc.IssueKey(context.Background(), "u1")
	require.NoError(t, err)

	var identity *Identity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	authn.Middleware(identityProbe(&identity)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.User.ID)
	assert.Nil(t, identity.Session)
}

func TestMiddlewareInvalidTokenIsTerminal(t *testing.T) {
	repo := newMockRepository()
	user := seedUser(repo, "u1")
	auditor := &recordingAuditor{}
	authn, _ := newTestAuthenticator(t, repo, auditor)

	// A session that would authenticate if the token path fell through.
	sess := &shared.Session{}
	sess.SetUser(user.ID)

	var identity *Identity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	authn.Middleware(identityProbe(&identity)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, identity)
	assert.JSONEq(t, `{"error":"Invalid API key"}`, rr.Body.String())

	require.Len(t, auditor.logs, 1)
	assert.Equal(t, shared.AuthFailureMalformed, auditor.logs[0].Action)
	assert.Equal(t, "api_key", auditor.logs[0].Entity)
}

func TestMiddlewareFallsBackToSession(t *testing.T) {
	repo := newMockRepository()
	user := seedUser(repo, "u1")
	authn, _ := newTestAuthenticator(t, repo, nil)

	sess := &shared.Session{}
	sess.SetUser(user.ID)

	var identity *Identity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	authn.Middleware(identityProbe(&identity)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.User.ID)
	assert.Same(t, sess, identity.Session)
}

func TestMiddlewareClearsSessionForDeletedUser(t *testing.T) {
	repo := newMockRepository()
	authn, _ := newTestAuthenticator(t, repo, nil)

	sess := &shared.Session{}
	sess.SetUser("gone")

	var identity *Identity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	authn.Middleware(identityProbe(&identity)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Nil(t, identity)
	assert.Empty(t, sess.User())
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var envelope struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusUnauthorized, envelope.Code)
	assert.Equal(t, "Unauthorized", envelope.Msg)
	assert.Equal(t, "null", string(envelope.Data))
}

func TestRequireUserAllowsAuthenticated(t *testing.T) {
	user := &User{ID: "u1"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), &Identity{User: user}))

	rr := httptest.NewRecorder()
	RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}
