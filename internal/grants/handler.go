package grants

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gleeworld/gleeworld/internal/platform/httpx"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// Handler wires the permission-grant admin endpoints. Route guards are
// applied where the routes are mounted.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers grant routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.revoke)
}

type grantResponse struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	PermissionKey string     `json:"permission_key"`
	IsActive      bool       `json:"is_active"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	GrantedBy     string     `json:"granted_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toResponse(g Grant) grantResponse {
	return grantResponse{
		ID:            g.ID,
		Email:         g.Email,
		PermissionKey: g.PermissionKey,
		IsActive:      g.IsActive,
		ExpiresAt:     g.ExpiresAt,
		GrantedBy:     g.GrantedBy,
		CreatedAt:     g.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email query parameter required")
		return
	}
	list, err := h.service.ListForEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("list grants", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]grantResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toResponse(g))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": out})
}

type createGrantRequest struct {
	Email         string     `json:"email" validate:"required,email"`
	PermissionKey string     `json:"permission_key" validate:"required"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createGrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	actor := actorFromSession(r)
	stored, err := h.service.Create(r.Context(), actor, req.Email, req.PermissionKey, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateGrant) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		h.logger.Error("create grant", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(stored))
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid grant id")
		return
	}
	if err := h.service.Revoke(r.Context(), actorFromSession(r), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "grant not found or already revoked")
			return
		}
		h.logger.Error("revoke grant", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.NoContent(w)
}

func actorFromSession(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.Identity()
	}
	return ""
}
