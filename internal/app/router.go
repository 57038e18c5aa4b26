package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gleeworld/gleeworld/internal/dashboard"
	"github.com/gleeworld/gleeworld/internal/grants"
	"github.com/gleeworld/gleeworld/internal/guard"
	"github.com/gleeworld/gleeworld/internal/identity"
	"github.com/gleeworld/gleeworld/internal/members"
	"github.com/gleeworld/gleeworld/internal/observability"
	"github.com/gleeworld/gleeworld/internal/platform/httpx"
	"github.com/gleeworld/gleeworld/internal/registry"
	"github.com/gleeworld/gleeworld/internal/shared"
	"github.com/gleeworld/gleeworld/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	Guard            guard.Middleware
	IdentityHandler  *identity.Handler
	DashboardHandler *dashboard.Handler
	GrantsHandler    *grants.Handler
	MembersHandler   *members.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with GleeWorld defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.IdentityHandler.MountRoutes)

	// The module catalogue is public metadata; access verdicts are not.
	r.Get("/modules/catalogue", catalogueHandler)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(params.Guard.RequireAuthenticated())
		params.DashboardHandler.MountRoutes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Route("/grants", func(r chi.Router) {
			r.Use(params.Guard.RequireManage("manage-permissions"))
			params.GrantsHandler.MountRoutes(r)
		})
		r.Route("/members", func(r chi.Router) {
			r.Use(params.Guard.RequireManage("user-management"))
			params.MembersHandler.MountRoutes(r)
		})
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.Guard.RequireAdmin())
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func catalogueHandler(w http.ResponseWriter, _ *http.Request) {
	type card struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Category string `json:"category"`
		Standard bool   `json:"standard"`
	}
	mods := registry.All()
	out := make([]card, 0, len(mods))
	for _, d := range mods {
		out = append(out, card{ID: d.ID, Title: d.Title, Category: string(d.Category), Standard: d.Standard})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"modules": out})
}
