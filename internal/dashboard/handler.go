package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gleeworld/gleeworld/internal/platform/httpx"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// Handler serves the dashboard module grid and card ordering.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/modules", h.modules)
	r.Get("/modules/{id}/access", h.moduleAccess)
	r.Put("/order", h.saveOrder)
}

func (h *Handler) modules(w http.ResponseWriter, r *http.Request) {
	identityID := identityFromSession(r)
	view, err := h.service.Modules(r.Context(), identityID)
	if err != nil {
		h.logger.Error("project dashboard", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) moduleAccess(w http.ResponseWriter, r *http.Request) {
	identityID := identityFromSession(r)
	verdict, err := h.service.ResolveModule(r.Context(), identityID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown module")
			return
		}
		h.logger.Error("resolve module", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"can_access": verdict.CanAccess,
		"can_manage": verdict.CanManage,
		"source":     verdict.Source,
	})
}

type saveOrderRequest struct {
	Order []string `json:"order"`
}

func (h *Handler) saveOrder(w http.ResponseWriter, r *http.Request) {
	var req saveOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}

	identityID := identityFromSession(r)
	applied, err := h.service.SaveOrder(r.Context(), identityID, req.Order)
	if err != nil {
		// The reorder still applies for this page view; tell the client to
		// keep it and show a recoverable notice.
		httpx.JSON(w, http.StatusOK, map[string]any{
			"order":     applied,
			"persisted": false,
			"notice":    "your layout could not be saved; it will reset next visit",
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": applied, "persisted": true})
}

func identityFromSession(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.Identity()
	}
	return ""
}
