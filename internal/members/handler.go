package members

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gleeworld/gleeworld/internal/access"
	"github.com/gleeworld/gleeworld/internal/platform/httpx"
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// Handler wires the member administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers member admin routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/exec-board/roles", h.boardRoles)
	r.Put("/{id}/role", h.assignRole)
	r.Put("/{id}/exec-board", h.assignExecBoard)
	r.Post("/exec-board/bulk", h.bulkAssign)
}

type memberResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	Kind         string `json:"kind"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	ExecRole     string `json:"exec_board_role,omitempty"`
	ExecTitle    string `json:"exec_board_title,omitempty"`
	Verified     bool   `json:"verified"`
}

func toMemberResponse(p profiles.Profile) memberResponse {
	resp := memberResponse{
		ID:           p.IdentityID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         string(p.Role),
		Kind:         string(p.Kind),
		IsAdmin:      p.IsAdmin,
		IsSuperAdmin: p.IsSuperAdmin,
		ExecRole:     string(p.ExecRole),
		Verified:     p.Verified,
	}
	if p.ExecRole != "" {
		resp.ExecTitle = access.BoardRoleDisplayName(p.ExecRole)
	}
	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]memberResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toMemberResponse(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"members":     out,
		"page":        pagination.Page,
		"per_page":    pagination.PerPage,
		"total":       pagination.Total,
		"total_pages": pagination.TotalPages,
	})
}

func (h *Handler) boardRoles(w http.ResponseWriter, r *http.Request) {
	roles := access.BoardRoles()
	out := make([]map[string]any, 0, len(roles))
	for _, role := range roles {
		out = append(out, map[string]any{
			"slug":            string(role),
			"title":           access.BoardRoleDisplayName(role),
			"permission_keys": access.BoardPermissionKeys(role),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

type assignRoleRequest struct {
	Role         string `json:"role" validate:"required"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	err := h.service.AssignRole(r.Context(), actorFromSession(r), chi.URLParam(r, "id"), profiles.Role(req.Role), req.IsAdmin, req.IsSuperAdmin)
	if err != nil {
		h.respondServiceError(w, "assign role", err)
		return
	}
	httpx.NoContent(w)
}

type assignExecRequest struct {
	ExecRole string `json:"exec_board_role"`
}

func (h *Handler) assignExecBoard(w http.ResponseWriter, r *http.Request) {
	var req assignExecRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}

	err := h.service.AssignExecBoard(r.Context(), actorFromSession(r), chi.URLParam(r, "id"), profiles.ExecRole(req.ExecRole))
	if err != nil {
		h.respondServiceError(w, "assign exec board", err)
		return
	}
	httpx.NoContent(w)
}

type bulkAssignRequest struct {
	Assignments []BulkAssignment `json:"assignments" validate:"required,min=1,dive"`
}

func (h *Handler) bulkAssign(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	results := h.service.BulkAssignExecBoard(r.Context(), actorFromSession(r), req.Assignments)
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "profile not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
}

func actorFromSession(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.Identity()
	}
	return ""
}
