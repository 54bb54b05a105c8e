package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/platform/httpx"
	"github.com/modelgate/modelgate/internal/rbac"
	"github.com/modelgate/modelgate/internal/shared"
)

// Handler exposes user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw}
}

// MountRoutes registers user routes. The collection list is permission
// gated; single-user routes allow self access without a permission.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(h.rbac.Require(rbac.ResourceUser, rbac.ActionRead)).Get("/", h.listUsers)
		r.Get("/current", h.currentUser)
	})
	r.Route("/user/{id}", func(r chi.Router) {
		r.Get("/", h.getUser)
		r.Patch("/", h.updateUser)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, users)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	current := auth.UserFromContext(r.Context())
	if current == nil {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), current.ID)
	if err != nil {
		h.logger.Error("current user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, profile)
}

// requireSelfOr allows the request through when the caller targets their
// own record, otherwise demands the given action on the user resource.
func (h *Handler) requireSelfOr(w http.ResponseWriter, r *http.Request, action string) bool {
	current := auth.UserFromContext(r.Context())
	if current == nil {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if current.ID == chi.URLParam(r, "id") {
		return true
	}
	ok, err := h.rbac.Service.HasPermission(r.Context(), current.ID, rbac.ResourceUser, action)
	if err != nil {
		h.logger.Error("permission check", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if !ok {
		httpx.Fail(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireSelfOr(w, r, rbac.ActionRead) {
		return
	}

	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.OK(w, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireSelfOr(w, r, rbac.ActionUpdate) {
		return
	}

	var upd Update
	if err := httpx.DecodeJSON(r, &upd); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		if errors.Is(err, shared.ErrDuplicate) {
			httpx.Fail(w, http.StatusBadRequest, "email already in use")
			return
		}
		h.logger.Error("update user", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	httpx.OK(w, user)
}
