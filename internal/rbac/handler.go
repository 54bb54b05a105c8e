package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/platform/httpx"
	"github.com/modelgate/modelgate/internal/shared"
)

// Handler exposes role/permission administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      Middleware
	auditor   shared.Recorder
	validator *validator.Validate
}

// NewHandler builds a Handler instance. auditor may be nil.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware, auditor shared.Recorder) *Handler {
	if auditor == nil {
		auditor = shared.NoopAuditor{}
	}
	return &Handler{logger: logger, service: service, rbac: mw, auditor: auditor, validator: validator.New()}
}

func (h *Handler) audit(r *http.Request, action, entity, entityID string, meta map[string]any) {
	log := shared.AuditLog{Action: action, Entity: entity, EntityID: entityID, Meta: meta}
	if user := auth.UserFromContext(r.Context()); user != nil {
		log.ActorID = user.ID
	}
	if err := h.auditor.Record(r.Context(), log); err != nil {
		h.logger.Error("audit record", slog.Any("error", err))
	}
}

// MountRoutes registers role and permission admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.With(h.rbac.Require(ResourceRole, ActionRead)).Get("/", h.listRoles)
		r.With(h.rbac.Require(ResourceRole, ActionCreate)).Post("/", h.createRole)
	})
	r.Route("/permissions", func(r chi.Router) {
		r.With(h.rbac.Require(ResourcePermission, ActionRead)).Get("/", h.listPermissions)
		r.With(h.rbac.Require(ResourcePermission, ActionCreate)).Post("/", h.createPermission)
	})
	r.With(h.rbac.Require(ResourceUserRole, ActionCreate)).Post("/user-roles", h.assignRole)
	r.With(h.rbac.Require(ResourceRolePermission, ActionCreate)).Post("/role-permissions", h.attachPermission)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, roles)
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Role name is required")
		return
	}

	role, err := h.service.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			httpx.Fail(w, http.StatusBadRequest, "Role already exists")
			return
		}
		h.logger.Error("create role", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to create role")
		return
	}
	h.audit(r, "role_created", "role", strconv.FormatInt(role.ID, 10), map[string]any{"name": role.Name})
	httpx.OK(w, role)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, perms)
}

type createPermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Resource    string `json:"resource" validate:"required"`
	Action      string `json:"action" validate:"required"`
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Name, resource and action are required")
		return
	}

	perm, err := h.service.CreatePermission(r.Context(), Permission{
		Name:        req.Name,
		Description: req.Description,
		Resource:    req.Resource,
		Action:      req.Action,
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			httpx.Fail(w, http.StatusBadRequest, "Permission already exists")
			return
		}
		h.logger.Error("create permission", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to create permission")
		return
	}
	h.audit(r, "permission_created", "permission", strconv.FormatInt(perm.ID, 10), map[string]any{"resource": perm.Resource, "action": perm.Action})
	httpx.OK(w, perm)
}

type assignRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	RoleID int64  `json:"roleId" validate:"required"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "User ID and Role ID are required")
		return
	}

	if err := h.service.AssignRole(r.Context(), req.UserID, req.RoleID); err != nil {
		h.logger.Error("assign role", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to assign role to user")
		return
	}
	h.audit(r, "role_assigned", "user_role", req.UserID, map[string]any{"roleId": req.RoleID})
	httpx.OK(w, req)
}

type attachPermissionRequest struct {
	RoleID       int64 `json:"roleId" validate:"required"`
	PermissionID int64 `json:"permissionId" validate:"required"`
}

func (h *Handler) attachPermission(w http.ResponseWriter, r *http.Request) {
	var req attachPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Role ID and Permission ID are required")
		return
	}

	if err := h.service.AttachPermission(r.Context(), req.RoleID, req.PermissionID); err != nil {
		h.logger.Error("attach permission", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to assign permission to role")
		return
	}
	h.audit(r, "permission_attached", "role_permission", strconv.FormatInt(req.RoleID, 10), map[string]any{"permissionId": req.PermissionID})
	httpx.OK(w, req)
}
