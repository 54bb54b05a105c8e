package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/platform/httpx"
	"github.com/modelgate/modelgate/internal/shared"
)

// Handler exposes the catalog CRUD endpoints. All routes sit behind
// RequireUser; like the rest of the catalog surface they are not
// permission gated beyond that.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the catalog routes under /v1.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/channels", func(r chi.Router) {
		r.Get("/", h.listChannels)
	})
	r.Route("/channel", func(r chi.Router) {
		r.Post("/", h.createChannel)
		r.Get("/{id}", h.getChannel)
		r.Patch("/{id}", h.updateChannel)
		r.Delete("/{id}", h.deleteChannel)
	})
	r.Route("/tools", func(r chi.Router) {
		r.Get("/", h.listTools)
	})
	r.Route("/tool", func(r chi.Router) {
		r.Post("/", h.createTool)
		r.Get("/{id}", h.getTool)
	})
	r.Route("/processors", func(r chi.Router) {
		r.Get("/", h.listProcessors)
	})
	r.Route("/processor", func(r chi.Router) {
		r.Post("/", h.createProcessor)
		r.Get("/{id}", h.getProcessor)
		r.Delete("/{id}", h.deleteProcessor)
	})
	r.Route("/presets", func(r chi.Router) {
		r.Get("/", h.listPresets)
	})
	r.Route("/preset", func(r chi.Router) {
		r.Post("/", h.createPreset)
		r.Get("/{id}", h.getPreset)
		r.Delete("/{id}", h.deletePreset)
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *Handler) respond(w http.ResponseWriter, entity string, data any, err error) {
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, entity+" not found")
			return
		}
		h.logger.Error("catalog", slog.String("entity", entity), slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.OK(w, data)
}

func (h *Handler) listChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.ListChannels(r.Context())
	h.respond(w, "Channel", channels, err)
}

func (h *Handler) getChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	ch, err := h.service.GetChannel(r.Context(), id)
	h.respond(w, "Channel", ch, err)
}

func (h *Handler) createChannel(w http.ResponseWriter, r *http.Request) {
	var ch Channel
	if err := httpx.DecodeJSON(r, &ch); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	user := auth.UserFromContext(r.Context())
	stored, err := h.service.CreateChannel(r.Context(), user.ID, ch)
	h.respond(w, "Channel", stored, err)
}

type channelPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Code        *string `json:"code"`
	ModelType   *string `json:"modelType"`
	Embedded    *bool   `json:"embedded"`
	AdapterType *string `json:"adapterType"`
	Models      *string `json:"models"`
	BaseURL     *string `json:"baseUrl"`
	APIKey      *string `json:"apiKey"`
}

func (h *Handler) updateChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	var patch channelPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	stored, err := h.service.UpdateChannel(r.Context(), id, func(ch *Channel) {
		if patch.Name != nil {
			ch.Name = *patch.Name
		}
		if patch.Description != nil {
			ch.Description = *patch.Description
		}
		if patch.Code != nil {
			ch.Code = *patch.Code
		}
		if patch.ModelType != nil {
			ch.ModelType = *patch.ModelType
		}
		if patch.Embedded != nil {
			ch.Embedded = *patch.Embedded
		}
		if patch.AdapterType != nil {
			ch.AdapterType = *patch.AdapterType
		}
		if patch.Models != nil {
			ch.Models = *patch.Models
		}
		if patch.BaseURL != nil {
			ch.BaseURL = *patch.BaseURL
		}
		if patch.APIKey != nil {
			ch.APIKey = *patch.APIKey
		}
	})
	h.respond(w, "Channel", stored, err)
}

func (h *Handler) deleteChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.service.DeleteChannel(r.Context(), id); err != nil {
		h.respond(w, "Channel", nil, err)
		return
	}
	httpx.OKMsg(w, "Channel deleted successfully", nil)
}

func (h *Handler) listTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.service.ListTools(r.Context())
	h.respond(w, "Tool", tools, err)
}

func (h *Handler) getTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	t, err := h.service.GetTool(r.Context(), id)
	h.respond(w, "Tool", t, err)
}

func (h *Handler) createTool(w http.ResponseWriter, r *http.Request) {
	var t Tool
	if err := httpx.DecodeJSON(r, &t); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	user := auth.UserFromContext(r.Context())
	stored, err := h.service.CreateTool(r.Context(), user.ID, t)
	h.respond(w, "Tool", stored, err)
}

func (h *Handler) listProcessors(w http.ResponseWriter, r *http.Request) {
	processors, err := h.service.ListProcessors(r.Context())
	h.respond(w, "Processor", processors, err)
}

func (h *Handler) getProcessor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.service.GetProcessor(r.Context(), id)
	h.respond(w, "Processor", p, err)
}

func (h *Handler) createProcessor(w http.ResponseWriter, r *http.Request) {
	var p Processor
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	user := auth.UserFromContext(r.Context())
	stored, err := h.service.CreateProcessor(r.Context(), user.ID, p)
	h.respond(w, "Processor", stored, err)
}

func (h *Handler) deleteProcessor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.service.DeleteProcessor(r.Context(), id); err != nil {
		h.respond(w, "Processor", nil, err)
		return
	}
	httpx.OKMsg(w, "Processor deleted successfully", nil)
}

func (h *Handler) listPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.service.ListPresets(r.Context())
	h.respond(w, "Preset", presets, err)
}

func (h *Handler) getPreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.service.GetPreset(r.Context(), id)
	h.respond(w, "Preset", p, err)
}

func (h *Handler) createPreset(w http.ResponseWriter, r *http.Request) {
	var p Preset
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	user := auth.UserFromContext(r.Context())
	stored, err := h.service.CreatePreset(r.Context(), user.ID, p)
	h.respond(w, "Preset", stored, err)
}

func (h *Handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.service.DeletePreset(r.Context(), id); err != nil {
		h.respond(w, "Preset", nil, err)
		return
	}
	httpx.OKMsg(w, "Preset deleted successfully", nil)
}
