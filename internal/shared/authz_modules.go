package shared

// Permission keys gating the executive and admin dashboard modules.
const (
	PermHeroManagement    = "hero_management"
	PermDashboardSettings = "dashboard_settings"
	PermYouTubeManagement = "youtube_management"
	PermBudgetCreation    = "budget_creation"
	PermContracts         = "contracts"
	PermSendEmails        = "send_emails"
	PermManagePermissions = "manage_permissions"
	PermAdminPanel        = "admin_panel"
	PermUserManagement    = "user_management"
	PermSystemSettings    = "system_settings"
	PermHandbook          = "handbook"
	PermMusicLibrary      = "music_library"
	PermWardrobe          = "wardrobe_management"
	PermAttendance        = "attendance_management"
)

// ModuleScopes lists every permission key known to the dashboard.
func ModuleScopes() []string {
	return []string{
		PermHeroManagement,
		PermDashboardSettings,
		PermYouTubeManagement,
		PermBudgetCreation,
		PermContracts,
		PermSendEmails,
		PermManagePermissions,
		PermAdminPanel,
		PermUserManagement,
		PermSystemSettings,
		PermHandbook,
		PermMusicLibrary,
		PermWardrobe,
		PermAttendance,
	}
}
