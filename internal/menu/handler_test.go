package menu

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/rbac"
)

type allowAllPermissions struct{}

func (allowAllPermissions) RoleIDsForUser(ctx context.Context, userID string) ([]int64, error) {
	return []int64{1}, nil
}

func (allowAllPermissions) PermissionExists(ctx context.Context, roleIDs []int64, resource, action string) (bool, error) {
	return true, nil
}

func (allowAllPermissions) PermissionIDsForRoles(ctx context.Context, roleIDs []int64) ([]int64, error) {
	return nil, nil
}

func (allowAllPermissions) ListRoles(ctx context.Context) ([]rbac.Role, error) { return nil, nil }

func (allowAllPermissions) CreateRole(ctx context.Context, name, description string) (rbac.Role, error) {
	return rbac.Role{}, nil
}

func (allowAllPermissions) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	return nil, nil
}

func (allowAllPermissions) CreatePermission(ctx context.Context, p rbac.Permission) (rbac.Permission, error) {
	return p, nil
}

func (allowAllPermissions) AssignRoleToUser(ctx context.Context, userID string, roleID int64) error {
	return nil
}

func (allowAllPermissions) AttachPermissionToRole(ctx context.Context, roleID, permissionID int64) error {
	return nil
}

func (allowAllPermissions) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func newTestRouter(repo RepositoryPort, perms PermissionSource) chi.Router {
	mw := rbac.Middleware{Service: rbac.NewService(allowAllPermissions{}), Logger: slog.Default()}
	handler := NewHandler(slog.Default(), NewService(repo, perms), mw, nil)
	router := chi.NewRouter()
	router.Route("/v1", handler.MountRoutes)
	return router
}

func asUser(req *http.Request, userID string) *http.Request {
	identity := &auth.Identity{User: &auth.User{ID: userID}}
	return req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
}

func TestListMenuRequiresIdentity(t *testing.T) {
	router := newTestRouter(newMockRepository(), staticPermissions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/menu", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListMenuReturnsForest(t *testing.T) {
	repo := newMockRepository()
	root := addItem(t, repo, "console", nil, 1, 10)
	addItem(t, repo, "keys", &root.ID, 1, 10)
	router := newTestRouter(repo, staticPermissions{"u1": {10}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/menu", nil), "u1"))

	require.Equal(t, http.StatusOK, rr.Code)

	var envelope struct {
		Code int     `json:"code"`
		Data []*Node `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "console", envelope.Data[0].Name)
	require.Len(t, envelope.Data[0].Children, 1)
	assert.Equal(t, "keys", envelope.Data[0].Children[0].Name)
}

func TestListMenuEmptyForestIsArray(t *testing.T) {
	router := newTestRouter(newMockRepository(), staticPermissions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/menu", nil), "u1"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"code":0,"msg":"success","data":[]}`, rr.Body.String())
}

func TestCreateItemValidatesBody(t *testing.T) {
	router := newTestRouter(newMockRepository(), staticPermissions{})

	req := asUser(httptest.NewRequest(http.MethodPost, "/v1/menu", strings.NewReader(`{"name":"console"}`)), "u1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Menu name and path are required")
}

func TestAttachPermissionValidatesIDs(t *testing.T) {
	router := newTestRouter(newMockRepository(), staticPermissions{})

	req := asUser(httptest.NewRequest(http.MethodPost, "/v1/menu-permissions", strings.NewReader(`{"menuItemId":1}`)), "u1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
