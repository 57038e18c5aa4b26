package access

import (
	"time"

	"github.com/gleeworld/gleeworld/internal/grants"
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/registry"
)

// Resolve computes the verdict for one module. Precedence is strict and
// first match wins:
//
//  1. admin / super-admin: full access to everything
//  2. any exec-board position: full access to exec-communications modules
//  3. the position's static permission table (hierarchy included)
//  4. standard modules: view access for every authenticated identity
//  5. role-set modules: view access when the primary role is listed
//  6. an active, unexpired grant addressed to the profile's email
//
// An expired or inactive grant can never override an earlier allow, and a
// standard module is never deniable by a missing grant. A guest-shaped
// profile (row never loaded) fails 1-3 and 5-6 by construction.
func Resolve(p profiles.Profile, grantList []grants.Grant, mod registry.Descriptor, now time.Time) Resolved {
	if p.IsSuperAdmin || p.IsAdmin {
		return Resolved{CanAccess: true, CanManage: true, Source: SourceAdmin}
	}

	if p.IsExecBoard && mod.Category == registry.CategoryExecComms {
		return Resolved{CanAccess: true, CanManage: true, Source: SourceExecutive}
	}

	if p.ExecRole != "" && mod.PermissionKey != "" {
		if g, ok := boardGrantFor(p.ExecRole, mod.PermissionKey); ok {
			return Resolved{CanAccess: g.View, CanManage: g.Manage, Source: SourceExecutive}
		}
	}

	if mod.Standard {
		return Resolved{CanAccess: true, Source: SourceRole}
	}

	for _, role := range mod.RequiredRoles {
		if p.Role == role {
			return Resolved{CanAccess: true, Source: SourceRole}
		}
	}

	if mod.PermissionKey != "" && p.Email != "" {
		for _, g := range grants.FilterActive(grantList, now) {
			if g.PermissionKey == mod.PermissionKey && g.Matches(p.Email) {
				return Resolved{CanAccess: true, Source: SourceUsername}
			}
		}
	}

	return Resolved{}
}

// ResolveAll computes verdicts for every module in the slice, keyed by
// module id.
func ResolveAll(p profiles.Profile, grantList []grants.Grant, mods []registry.Descriptor, now time.Time) map[string]Resolved {
	out := make(map[string]Resolved, len(mods))
	for _, mod := range mods {
		out[mod.ID] = Resolve(p, grantList, mod, now)
	}
	return out
}
