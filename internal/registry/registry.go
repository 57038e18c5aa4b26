// Package registry declares the dashboard module catalogue. The set is
// fixed at build time; changing it is a deployment concern, never a
// request-time one.
package registry

import (
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// Category groups modules in the dashboard grid.
type Category string

const (
	CategoryCommunity        Category = "community"
	CategoryWellness         Category = "wellness"
	CategoryLibrary          Category = "library"
	CategoryMemberManagement Category = "member-management"
	CategoryFinances         Category = "finances"
	// CategoryExecComms marks the executive-board communications bundle.
	// Any exec-board member gets full access to modules in it.
	CategoryExecComms      Category = "exec-communications"
	CategoryAdministration Category = "administration"
)

// Descriptor declares a single dashboard module.
type Descriptor struct {
	ID            string
	Title         string
	Category      Category
	RequiredRoles []profiles.Role
	PermissionKey string
	// Standard modules are granted to every authenticated non-guest
	// identity with no further check.
	Standard bool
}

// modules is the registry in default dashboard order. Standard member
// modules first, gated executive/admin modules after.
var modules = []Descriptor{
	{ID: "announcements", Title: "Announcements", Category: CategoryCommunity, Standard: true},
	{ID: "calendar", Title: "Events Calendar", Category: CategoryCommunity, Standard: true},
	{ID: "member-directory", Title: "Member Directory", Category: CategoryCommunity, Standard: true},
	{ID: "handbook", Title: "Glee Club Handbook", Category: CategoryCommunity, Standard: true},
	{ID: "profile", Title: "My Profile", Category: CategoryCommunity, Standard: true},
	{ID: "notifications", Title: "Notifications", Category: CategoryCommunity, Standard: true},
	{ID: "glee-lounge", Title: "Glee Lounge", Category: CategoryCommunity, Standard: true},
	{ID: "wellness", Title: "Wellness Tracker", Category: CategoryWellness, Standard: true},

	{ID: "alumnae-portal", Title: "Alumnae Portal", Category: CategoryCommunity, RequiredRoles: []profiles.Role{profiles.RoleAlumna}},
	{ID: "auditions", Title: "Auditions", Category: CategoryCommunity, RequiredRoles: []profiles.Role{profiles.RoleAuditioner}},
	{ID: "course-tools", Title: "Course Tools", Category: CategoryCommunity, RequiredRoles: []profiles.Role{profiles.RoleInstructor}},

	{ID: "music-library", Title: "Music Library Management", Category: CategoryLibrary, PermissionKey: shared.PermMusicLibrary},
	{ID: "wardrobe", Title: "Wardrobe Management", Category: CategoryMemberManagement, PermissionKey: shared.PermWardrobe},
	{ID: "attendance", Title: "Attendance Management", Category: CategoryMemberManagement, PermissionKey: shared.PermAttendance},

	{ID: "email-management", Title: "Email Management", Category: CategoryExecComms, PermissionKey: shared.PermSendEmails},
	{ID: "calendar-management", Title: "Calendar Management", Category: CategoryExecComms, PermissionKey: shared.PermDashboardSettings},
	{ID: "announcements-manager", Title: "Announcements Manager", Category: CategoryExecComms, PermissionKey: shared.PermSendEmails},

	{ID: "budgets", Title: "Budget Management", Category: CategoryFinances, PermissionKey: shared.PermBudgetCreation},
	{ID: "receipts", Title: "Receipts & Records", Category: CategoryFinances, PermissionKey: shared.PermBudgetCreation},
	{ID: "contracts", Title: "Contract Management", Category: CategoryFinances, PermissionKey: shared.PermContracts},

	{ID: "hero-management", Title: "Homepage Hero", Category: CategoryAdministration, PermissionKey: shared.PermHeroManagement},
	{ID: "youtube-management", Title: "YouTube Management", Category: CategoryAdministration, PermissionKey: shared.PermYouTubeManagement},
	{ID: "dashboard-settings", Title: "Dashboard Settings", Category: CategoryAdministration, PermissionKey: shared.PermDashboardSettings},
	{ID: "handbook-management", Title: "Handbook Management", Category: CategoryAdministration, PermissionKey: shared.PermHandbook},
	{ID: "manage-permissions", Title: "Permission Management", Category: CategoryAdministration, PermissionKey: shared.PermManagePermissions},
	{ID: "user-management", Title: "User Management", Category: CategoryAdministration, PermissionKey: shared.PermUserManagement},
	{ID: "admin-panel", Title: "Admin Panel", Category: CategoryAdministration, PermissionKey: shared.PermAdminPanel},
	{ID: "system-settings", Title: "System Settings", Category: CategoryAdministration, PermissionKey: shared.PermSystemSettings},
}

var byID = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(modules))
	for _, d := range modules {
		m[d.ID] = d
	}
	return m
}()

// All returns every module in default order.
func All() []Descriptor {
	out := make([]Descriptor, len(modules))
	copy(out, modules)
	return out
}

// Standard returns the standard member modules in default order.
func Standard() []Descriptor {
	var out []Descriptor
	for _, d := range modules {
		if d.Standard {
			out = append(out, d)
		}
	}
	return out
}

// Gated returns the executive/admin modules in default order.
func Gated() []Descriptor {
	var out []Descriptor
	for _, d := range modules {
		if !d.Standard {
			out = append(out, d)
		}
	}
	return out
}

// Lookup finds a module by id.
func Lookup(id string) (Descriptor, bool) {
	d, ok := byID[id]
	return d, ok
}

// DefaultOrder lists module ids in registry order. It is the fallback when
// an identity has no stored card order.
func DefaultOrder() []string {
	ids := make([]string, len(modules))
	for i, d := range modules {
		ids[i] = d.ID
	}
	return ids
}
