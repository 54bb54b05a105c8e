package menu

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/platform/httpx"
	"github.com/modelgate/modelgate/internal/rbac"
	"github.com/modelgate/modelgate/internal/shared"
)

// Handler exposes the menu endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	auditor   shared.Recorder
	validator *validator.Validate
}

// NewHandler builds a Handler instance. auditor may be nil.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware, auditor shared.Recorder) *Handler {
	if auditor == nil {
		auditor = shared.NoopAuditor{}
	}
	return &Handler{logger: logger, service: service, rbac: mw, auditor: auditor, validator: validator.New()}
}

func (h *Handler) audit(r *http.Request, action, entityID string, meta map[string]any) {
	log := shared.AuditLog{Action: action, Entity: "menu_item", EntityID: entityID, Meta: meta}
	if user := auth.UserFromContext(r.Context()); user != nil {
		log.ActorID = user.ID
	}
	if err := h.auditor.Record(r.Context(), log); err != nil {
		h.logger.Error("audit record", slog.Any("error", err))
	}
}

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.listMenu)
		r.With(h.rbac.Require(rbac.ResourceMenu, rbac.ActionCreate)).Post("/", h.createItem)
	})
	r.With(h.rbac.Require(rbac.ResourceMenuPermission, rbac.ActionCreate)).Post("/menu-permissions", h.attachPermission)
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tree, err := h.service.BuildMenu(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("build menu", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.OK(w, tree)
}

type createItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Path     string `json:"path" validate:"required"`
	Icon     string `json:"icon"`
	ParentID *int64 `json:"parentId"`
	Order    int    `json:"order"`
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Menu name and path are required")
		return
	}

	item, err := h.service.CreateItem(r.Context(), Item{
		Name:     req.Name,
		Path:     req.Path,
		Icon:     req.Icon,
		ParentID: req.ParentID,
		Order:    req.Order,
	})
	if err != nil {
		h.logger.Error("create menu item", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to create menu item")
		return
	}
	h.audit(r, "menu_item_created", strconv.FormatInt(item.ID, 10), map[string]any{"path": item.Path})
	httpx.OK(w, item)
}

type attachPermissionRequest struct {
	MenuItemID   int64 `json:"menuItemId" validate:"required"`
	PermissionID int64 `json:"permissionId" validate:"required"`
}

func (h *Handler) attachPermission(w http.ResponseWriter, r *http.Request) {
	var req attachPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Menu Item ID and Permission ID are required")
		return
	}

	if err := h.service.AttachPermission(r.Context(), req.MenuItemID, req.PermissionID); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			httpx.Fail(w, http.StatusBadRequest, "duplicate entry")
			return
		}
		h.logger.Error("attach menu permission", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to assign permission to menu item")
		return
	}
	h.audit(r, "menu_permission_attached", strconv.FormatInt(req.MenuItemID, 10), map[string]any{"permissionId": req.PermissionID})
	httpx.OK(w, req)
}
