package access

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// Executive-board positions.
const (
	// Artistic leadership.
	BoardStudentConductor profiles.ExecRole = "student-conductor"
	BoardSoprano1Leader   profiles.ExecRole = "soprano-1-section-leader"
	BoardSoprano2Leader   profiles.ExecRole = "soprano-2-section-leader"
	BoardAlto1Leader      profiles.ExecRole = "alto-1-section-leader"
	BoardAlto2Leader      profiles.ExecRole = "alto-2-section-leader"

	// Managing leadership.
	BoardPresident        profiles.ExecRole = "president"
	BoardVicePresident    profiles.ExecRole = "vice-president"
	BoardSecretary        profiles.ExecRole = "secretary"
	BoardTreasurer        profiles.ExecRole = "treasurer"
	BoardTourManager      profiles.ExecRole = "tour-manager"
	BoardRoadManager      profiles.ExecRole = "road-manager"
	BoardMerchManager     profiles.ExecRole = "merchandise-manager"
	BoardPRCoordinator    profiles.ExecRole = "public-relations-coordinator"
	BoardPRCoManager1     profiles.ExecRole = "public-relations-co-manager-1"
	BoardPRCoManager2     profiles.ExecRole = "public-relations-co-manager-2"
	BoardHistorian        profiles.ExecRole = "historian"
	BoardAlumnaeLiaison   profiles.ExecRole = "alumnae-liaison"
	BoardAlumnaeCorrespondent profiles.ExecRole = "alumnae-correspondent"
	BoardCoLibrarian1     profiles.ExecRole = "co-librarian-1"
	BoardCoLibrarian2     profiles.ExecRole = "co-librarian-2"
	BoardCoWardrobe1      profiles.ExecRole = "co-wardrobe-mistress-1"
	BoardCoWardrobe2      profiles.ExecRole = "co-wardrobe-mistress-2"
	BoardChaplain         profiles.ExecRole = "chaplain"
	BoardSetUpCrewManager profiles.ExecRole = "set-up-crew-manager"
	BoardStageManager     profiles.ExecRole = "stage-manager"
	BoardChiefOfStaff     profiles.ExecRole = "chief-of-staff"
	BoardDataAnalyst      profiles.ExecRole = "data-analyst"
)

// boardGrant carries the access/manage flags a position's table entry grants.
type boardGrant struct {
	View   bool
	Manage bool
}

var manage = boardGrant{View: true, Manage: true}
var view = boardGrant{View: true}

// boardPermissions is the static per-position permission table. The
// handbook entry is view-only everywhere; all other entries carry manage.
var boardPermissions = map[profiles.ExecRole]map[string]boardGrant{
	BoardStudentConductor: {shared.PermYouTubeManagement: manage, shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardSoprano1Leader:   {shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardSoprano2Leader:   {shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardAlto1Leader:      {shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardAlto2Leader:      {shared.PermSendEmails: manage, shared.PermHandbook: view},

	BoardPresident: {
		shared.PermHeroManagement:    manage,
		shared.PermDashboardSettings: manage,
		shared.PermYouTubeManagement: manage,
		shared.PermBudgetCreation:    manage,
		shared.PermContracts:         manage,
		shared.PermSendEmails:        manage,
		shared.PermManagePermissions: manage,
		shared.PermHandbook:          view,
	},
	BoardVicePresident: {
		shared.PermBudgetCreation:    manage,
		shared.PermContracts:         manage,
		shared.PermSendEmails:        manage,
		shared.PermYouTubeManagement: manage,
		shared.PermHandbook:          view,
	},
	BoardSecretary: {shared.PermSendEmails: manage, shared.PermContracts: manage, shared.PermHandbook: view},
	BoardTreasurer: {shared.PermBudgetCreation: manage, shared.PermContracts: manage, shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardTourManager: {shared.PermBudgetCreation: manage, shared.PermContracts: manage, shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardRoadManager: {shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardMerchManager: {shared.PermBudgetCreation: manage, shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardPRCoordinator: {shared.PermHeroManagement: manage, shared.PermSendEmails: manage, shared.PermYouTubeManagement: manage, shared.PermHandbook: view},
	BoardPRCoManager1:  {shared.PermHeroManagement: manage, shared.PermSendEmails: manage, shared.PermYouTubeManagement: manage, shared.PermHandbook: view},
	BoardPRCoManager2:  {shared.PermHeroManagement: manage, shared.PermSendEmails: manage, shared.PermYouTubeManagement: manage, shared.PermHandbook: view},
	BoardHistorian:     {shared.PermYouTubeManagement: manage, shared.PermHandbook: view},
	BoardAlumnaeLiaison:       {shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardAlumnaeCorrespondent: {shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardCoLibrarian1: {shared.PermMusicLibrary: manage, shared.PermHandbook: view},
	BoardCoLibrarian2: {shared.PermMusicLibrary: manage, shared.PermHandbook: view},
	BoardCoWardrobe1:  {shared.PermWardrobe: manage, shared.PermHandbook: view},
	BoardCoWardrobe2:  {shared.PermWardrobe: manage, shared.PermHandbook: view},
	BoardChaplain:     {shared.PermSendEmails: manage, shared.PermHandbook: view},
	BoardSetUpCrewManager: {shared.PermDashboardSettings: manage, shared.PermHandbook: view},
	BoardStageManager:     {shared.PermDashboardSettings: manage, shared.PermHandbook: view},
	BoardChiefOfStaff: {
		shared.PermHeroManagement:    manage,
		shared.PermDashboardSettings: manage,
		shared.PermYouTubeManagement: manage,
		shared.PermBudgetCreation:    manage,
		shared.PermContracts:         manage,
		shared.PermSendEmails:        manage,
		shared.PermManagePermissions: manage,
		shared.PermAdminPanel:        manage,
		shared.PermUserManagement:    manage,
		shared.PermSystemSettings:    manage,
		shared.PermHandbook:          view,
	},
	BoardDataAnalyst: {shared.PermDashboardSettings: manage, shared.PermHandbook: view},
}

// boardHierarchy lets senior positions act with the permissions of the
// positions they oversee.
var boardHierarchy = map[profiles.ExecRole][]profiles.ExecRole{
	BoardPresident:        {BoardVicePresident, BoardChiefOfStaff, BoardTreasurer, BoardSecretary},
	BoardVicePresident:    {BoardSecretary},
	BoardChiefOfStaff:     {BoardTreasurer, BoardSecretary},
	BoardStudentConductor: {BoardSoprano1Leader, BoardSoprano2Leader, BoardAlto1Leader, BoardAlto2Leader},
	BoardPRCoordinator:    {BoardPRCoManager1, BoardPRCoManager2},
	BoardAlumnaeLiaison:   {BoardAlumnaeCorrespondent},
}

var boardDisplayNames = map[profiles.ExecRole]string{
	BoardStudentConductor:     "Student Conductor",
	BoardSoprano1Leader:       "Soprano 1 Section Leader",
	BoardSoprano2Leader:       "Soprano 2 Section Leader",
	BoardAlto1Leader:          "Alto 1 Section Leader",
	BoardAlto2Leader:          "Alto 2 Section Leader",
	BoardPresident:            "President",
	BoardVicePresident:        "Vice President",
	BoardSecretary:            "Secretary",
	BoardTreasurer:            "Treasurer",
	BoardTourManager:          "Tour Manager",
	BoardRoadManager:          "Road Manager",
	BoardMerchManager:         "Merchandise Manager",
	BoardPRCoordinator:        "Public Relations Coordinator",
	BoardPRCoManager1:         "Public Relations Co-Manager 1",
	BoardPRCoManager2:         "Public Relations Co-Manager 2",
	BoardHistorian:            "Historian",
	BoardAlumnaeLiaison:       "Alumnae Liaison",
	BoardAlumnaeCorrespondent: "Alumnae Correspondent",
	BoardCoLibrarian1:         "Co-Librarian 1",
	BoardCoLibrarian2:         "Co-Librarian 2",
	BoardCoWardrobe1:          "Co-Wardrobe Mistress 1",
	BoardCoWardrobe2:          "Co-Wardrobe Mistress 2",
	BoardChaplain:             "Chaplain",
	BoardSetUpCrewManager:     "Set-Up Crew Manager",
	BoardStageManager:         "Stage Manager",
	BoardChiefOfStaff:         "Chief of Staff",
	BoardDataAnalyst:          "Data Analyst",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// KnownBoardRole reports whether the slug names a defined position.
func KnownBoardRole(role profiles.ExecRole) bool {
	_, ok := boardPermissions[role]
	return ok
}

// BoardRoles returns every defined position slug.
func BoardRoles() []profiles.ExecRole {
	out := make([]profiles.ExecRole, 0, len(boardPermissions))
	for role := range boardPermissions {
		out = append(out, role)
	}
	return out
}

// BoardRoleDisplayName renders a human title for a position slug. Unknown
// slugs are title-cased so stale data still displays reasonably.
func BoardRoleDisplayName(role profiles.ExecRole) string {
	if name, ok := boardDisplayNames[role]; ok {
		return name
	}
	return titleCaser.String(strings.ReplaceAll(string(role), "-", " "))
}

// boardGrantFor resolves a position's grant for one permission key,
// following the hierarchy one level deep per the static table.
func boardGrantFor(role profiles.ExecRole, permissionKey string) (boardGrant, bool) {
	if g, ok := boardPermissions[role][permissionKey]; ok {
		return g, true
	}
	for _, inherited := range boardHierarchy[role] {
		if g, ok := boardPermissions[inherited][permissionKey]; ok {
			return g, true
		}
	}
	return boardGrant{}, false
}

// BoardPermissionKeys returns the effective permission keys for a position,
// hierarchy included.
func BoardPermissionKeys(role profiles.ExecRole) []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(table map[string]boardGrant) {
		for key := range table {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	add(boardPermissions[role])
	for _, inherited := range boardHierarchy[role] {
		add(boardPermissions[inherited])
	}
	return keys
}
