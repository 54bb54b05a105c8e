package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgate/modelgate/internal/platform/httpx"
)

func newTestHandler(t *testing.T, repo Repository) (*Handler, *Service) {
	t.Helper()
	svc := newTestService(t, repo)
	return NewHandler(slog.Default(), svc, nil), svc
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var envelope httpx.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope
}

func TestRegisterReturnsToken(t *testing.T) {
	repo := newMockRepository()
	handler, svc := newTestHandler(t, repo)

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postJSON("/auth/register", `{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`))

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	assert.Equal(t, 0, envelope.Code)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	user, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestRegisterValidatesBody(t *testing.T) {
	handler, _ := newTestHandler(t, newMockRepository())
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	cases := map[string]string{
		"missing email":  `{"username":"alice","password":"s3cret-pass"}`,
		"bad email":      `{"username":"alice","email":"nope","password":"s3cret-pass"}`,
		"short password": `{"username":"alice","email":"alice@example.com","password":"short"}`,
		"not json":       `{{{`,
	}
	for name, body := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, postJSON("/auth/register", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

func TestRegisterRejectsDuplicateAccount(t *testing.T) {
	handler, _ := newTestHandler(t, newMockRepository())
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postJSON("/auth/register", `{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, postJSON("/auth/register", `{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "already exists")
}

func TestSignInReturnsFreshToken(t *testing.T) {
	repo := newMockRepository()
	handler, svc := newTestHandler(t, repo)
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(5 * time.Millisecond) }
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postJSON("/auth/signin", `{"email":"alice@example.com","password":"s3cret-pass"}`))

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestSignInRejectsInvalidCredentials(t *testing.T) {
	repo := newMockRepository()
	handler, svc := newTestHandler(t, repo)
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postJSON("/auth/signin", `{"email":"alice@example.com","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIssueTokenRequiresIdentity(t *testing.T) {
	handler, _ := newTestHandler(t, newMockRepository())
	router := chi.NewRouter()
	router.Route("/api", handler.MountAPIRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postJSON("/api/token", `{}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIssueTokenRotatesEpoch(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1")
	handler, svc := newTestHandler(t, repo)
	router := chi.NewRouter()
	router.Route("/api", handler.MountAPIRoutes)

	req := postJSON("/api/token", `{}`)
	req = req.WithContext(ContextWithIdentity(req.Context(), &Identity{User: &User{ID: "u1"}}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	user, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
