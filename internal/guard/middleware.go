// Package guard wraps protected route subtrees. Every guard fails closed:
// if a required input cannot be loaded the request is rejected, never
// allowed through. Stacked guards AND together by middleware nesting.
package guard

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gleeworld/gleeworld/internal/access"
	"github.com/gleeworld/gleeworld/internal/grants"
	"github.com/gleeworld/gleeworld/internal/observability"
	"github.com/gleeworld/gleeworld/internal/platform/httpx"
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/registry"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// SignInPath is where anonymous browser navigation is redirected.
const SignInPath = "/auth/login"

// ProfileSource loads profiles for guard evaluation.
type ProfileSource interface {
	Load(ctx context.Context, identityID string) (profiles.Profile, error)
}

// GrantSource loads the active grants for an email.
type GrantSource interface {
	ActiveForEmail(ctx context.Context, email string) ([]grants.Grant, error)
}

// Middleware evaluates access predicates against the current session.
type Middleware struct {
	Profiles ProfileSource
	Grants   GrantSource
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Now      func() time.Time
}

func (m Middleware) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// RequireAuthenticated admits any signed-in identity. Anonymous browser
// navigation is bounced to the sign-in page with the requested path
// remembered for after sign-in.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := m.identity(r); !ok {
				m.denyAnonymous(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits admin and super-admin profiles only.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.require(func(p profiles.Profile, _ []grants.Grant) bool {
		return p.IsAdmin || p.IsSuperAdmin
	})
}

// RequireRoles admits profiles whose primary role is in the set. Admins
// always pass.
func (m Middleware) RequireRoles(roles ...profiles.Role) func(http.Handler) http.Handler {
	return m.require(func(p profiles.Profile, _ []grants.Grant) bool {
		if p.IsAdmin || p.IsSuperAdmin {
			return true
		}
		for _, role := range roles {
			if p.Role == role {
				return true
			}
		}
		return false
	})
}

// RequireModule admits profiles the resolver grants view access to the
// named module.
func (m Middleware) RequireModule(moduleID string) func(http.Handler) http.Handler {
	return m.requireModule(moduleID, false)
}

// RequireManage admits profiles the resolver grants manage access to the
// named module.
func (m Middleware) RequireManage(moduleID string) func(http.Handler) http.Handler {
	return m.requireModule(moduleID, true)
}

// RequireEnrollment admits profiles carrying the given course marker.
func (m Middleware) RequireEnrollment(course string) func(http.Handler) http.Handler {
	return m.require(func(p profiles.Profile, _ []grants.Grant) bool {
		return p.IsAdmin || p.EnrolledIn(course)
	})
}

func (m Middleware) requireModule(moduleID string, manage bool) func(http.Handler) http.Handler {
	mod, known := registry.Lookup(moduleID)
	return m.require(func(p profiles.Profile, grantList []grants.Grant) bool {
		if !known {
			m.Metrics.RecordAccessDecision(false, "")
			return false
		}
		verdict := access.Resolve(p, grantList, mod, m.now())
		allowed := verdict.CanAccess
		if manage {
			allowed = verdict.CanManage
		}
		m.Metrics.RecordAccessDecision(allowed, string(verdict.Source))
		return allowed
	})
}

// require builds a middleware around a predicate. The predicate runs only
// once every input has resolved; it is never evaluated on partial data.
func (m Middleware) require(allowed func(profiles.Profile, []grants.Grant) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identityID, ok := m.identity(r)
			if !ok {
				m.denyAnonymous(w, r)
				return
			}

			profile, grantList, err := m.inputs(r.Context(), identityID)
			if err != nil {
				// Access-critical fetch failed: fail closed.
				if m.Logger != nil {
					m.Logger.Error("guard inputs", slog.String("identity", identityID), slog.Any("error", err))
				}
				httpx.RespondError(w, httpx.ErrUnavailable)
				return
			}

			if !allowed(profile, grantList) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "you do not have access to this area")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// inputs loads the profile, then the grants addressed to its email. Grant
// lookup keys off the email, so it cannot start before the profile
// resolves. Guests have no email and therefore no grants.
func (m Middleware) inputs(ctx context.Context, identityID string) (profiles.Profile, []grants.Grant, error) {
	profile, err := m.Profiles.Load(ctx, identityID)
	if err != nil {
		return profiles.Profile{}, nil, err
	}
	var grantList []grants.Grant
	if m.Grants != nil && profile.Email != "" {
		grantList, err = m.Grants.ActiveForEmail(ctx, profile.Email)
		if err != nil {
			return profiles.Profile{}, nil, err
		}
	}
	return profile, grantList, nil
}

func (m Middleware) identity(r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return "", false
	}
	id := strings.TrimSpace(sess.Identity())
	if id == "" {
		return "", false
	}
	return id, true
}

func (m Middleware) denyAnonymous(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && r.Method == http.MethodGet {
		sess.SetReturnTo(r.URL.RequestURI())
	}
	if wantsHTML(r) {
		http.Redirect(w, r, SignInPath, http.StatusSeeOther)
		return
	}
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
