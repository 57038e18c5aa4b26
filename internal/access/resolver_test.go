package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleeworld/gleeworld/internal/grants"
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/registry"
	"github.com/gleeworld/gleeworld/internal/shared"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func mustLookup(t *testing.T, id string) registry.Descriptor {
	t.Helper()
	mod, ok := registry.Lookup(id)
	require.True(t, ok, "module %s must exist in the catalogue", id)
	return mod
}

func memberProfile(email string) profiles.Profile {
	return profiles.Profile{
		IdentityID: "u-member",
		Email:      email,
		Role:       profiles.RoleMember,
		Kind:       profiles.KindMember,
	}
}

func TestResolveAdminOverridesEverything(t *testing.T) {
	admin := profiles.Profile{
		IdentityID: "u-admin",
		Email:      "admin@gleeworld.org",
		Role:       profiles.RoleAdmin,
		Kind:       profiles.KindAdmin,
		IsAdmin:    true,
	}

	for _, mod := range registry.All() {
		verdict := Resolve(admin, nil, mod, testNow)
		assert.True(t, verdict.CanAccess, "admin must view %s", mod.ID)
		assert.True(t, verdict.CanManage, "admin must manage %s", mod.ID)
		assert.Equal(t, SourceAdmin, verdict.Source)
	}
}

func TestResolveAdminSourceWinsOverLaterRules(t *testing.T) {
	// An admin who also holds a board position and a grant still reports
	// the admin source: first match wins.
	p := profiles.Profile{
		IdentityID:  "u-admin-exec",
		Email:       "prez@gleeworld.org",
		Role:        profiles.RoleAdmin,
		Kind:        profiles.KindAdmin,
		IsAdmin:     true,
		IsExecBoard: true,
		ExecRole:    BoardPresident,
	}
	g := []grants.Grant{{Email: "prez@gleeworld.org", PermissionKey: shared.PermContracts, IsActive: true}}

	verdict := Resolve(p, g, mustLookup(t, "contracts"), testNow)
	assert.Equal(t, SourceAdmin, verdict.Source)
	assert.True(t, verdict.CanManage)
}

func TestResolveExecCommsBundleForAnyBoardMember(t *testing.T) {
	// The chaplain's static table has no calendar-management entry, but
	// the exec-communications category alone is enough.
	p := profiles.Profile{
		IdentityID:  "u-chaplain",
		Email:       "chaplain@gleeworld.org",
		Role:        profiles.RoleMember,
		Kind:        profiles.KindExecBoard,
		IsExecBoard: true,
		ExecRole:    BoardChaplain,
	}

	for _, id := range []string{"email-management", "calendar-management", "announcements-manager"} {
		verdict := Resolve(p, nil, mustLookup(t, id), testNow)
		assert.True(t, verdict.CanAccess, id)
		assert.True(t, verdict.CanManage, id)
		assert.Equal(t, SourceExecutive, verdict.Source, id)
	}
}

func TestResolveBoardTableGrantsManage(t *testing.T) {
	librarian := profiles.Profile{
		IdentityID:  "u-librarian",
		Email:       "lib@gleeworld.org",
		Role:        profiles.RoleMember,
		Kind:        profiles.KindExecBoard,
		IsExecBoard: true,
		ExecRole:    BoardCoLibrarian1,
	}

	verdict := Resolve(librarian, nil, mustLookup(t, "music-library"), testNow)
	assert.True(t, verdict.CanAccess)
	assert.True(t, verdict.CanManage)
	assert.Equal(t, SourceExecutive, verdict.Source)

	// No wardrobe entry for a librarian and no grant either.
	verdict = Resolve(librarian, nil, mustLookup(t, "wardrobe"), testNow)
	assert.False(t, verdict.CanAccess)
}

func TestResolveBoardHandbookEntryIsViewOnly(t *testing.T) {
	treasurer := profiles.Profile{
		IdentityID:  "u-treasurer",
		Email:       "money@gleeworld.org",
		Role:        profiles.RoleMember,
		Kind:        profiles.KindExecBoard,
		IsExecBoard: true,
		ExecRole:    BoardTreasurer,
	}

	verdict := Resolve(treasurer, nil, mustLookup(t, "handbook-management"), testNow)
	assert.True(t, verdict.CanAccess)
	assert.False(t, verdict.CanManage)
	assert.Equal(t, SourceExecutive, verdict.Source)
}

func TestResolveHierarchyInheritsOneLevel(t *testing.T) {
	// The president's own table has no admin-panel entry; the
	// chief-of-staff's does, and the president oversees that position.
	president := profiles.Profile{
		IdentityID:  "u-president",
		Email:       "prez@gleeworld.org",
		Role:        profiles.RoleMember,
		Kind:        profiles.KindExecBoard,
		IsExecBoard: true,
		ExecRole:    BoardPresident,
	}

	verdict := Resolve(president, nil, mustLookup(t, "admin-panel"), testNow)
	assert.True(t, verdict.CanAccess, "president inherits the chief-of-staff admin panel entry")
	assert.True(t, verdict.CanManage)
	assert.Equal(t, SourceExecutive, verdict.Source)

	// Inheritance is one level only: nobody oversees the president's
	// overseers transitively, and a section leader inherits nothing.
	leader := profiles.Profile{
		IdentityID:  "u-sop1",
		Email:       "sop1@gleeworld.org",
		Role:        profiles.RoleMember,
		Kind:        profiles.KindExecBoard,
		IsExecBoard: true,
		ExecRole:    BoardSoprano1Leader,
	}
	verdict = Resolve(leader, nil, mustLookup(t, "admin-panel"), testNow)
	assert.False(t, verdict.CanAccess)
}

func TestResolveStandardModulesForEveryProfile(t *testing.T) {
	member := memberProfile("alto@gleeworld.org")
	guest := profiles.Guest("u-guest")

	for _, mod := range registry.Standard() {
		for name, p := range map[string]profiles.Profile{"member": member, "guest": guest} {
			verdict := Resolve(p, nil, mod, testNow)
			assert.True(t, verdict.CanAccess, "%s must view %s", name, mod.ID)
			assert.False(t, verdict.CanManage, "%s must not manage %s", name, mod.ID)
			assert.Equal(t, SourceRole, verdict.Source)
		}
	}
}

func TestResolveStandardNeverDeniedByMissingGrant(t *testing.T) {
	member := memberProfile("alto@gleeworld.org")
	verdict := Resolve(member, []grants.Grant{}, mustLookup(t, "announcements"), testNow)
	assert.True(t, verdict.CanAccess)
}

func TestResolveRoleSetModules(t *testing.T) {
	alumna := profiles.Profile{
		IdentityID: "u-alumna",
		Email:      "alum@gleeworld.org",
		Role:       profiles.RoleAlumna,
		Kind:       profiles.KindMember,
	}

	verdict := Resolve(alumna, nil, mustLookup(t, "alumnae-portal"), testNow)
	assert.True(t, verdict.CanAccess)
	assert.False(t, verdict.CanManage)
	assert.Equal(t, SourceRole, verdict.Source)

	member := memberProfile("alto@gleeworld.org")
	verdict = Resolve(member, nil, mustLookup(t, "alumnae-portal"), testNow)
	assert.False(t, verdict.CanAccess)
}

func TestResolveGrantAllowsView(t *testing.T) {
	member := memberProfile("alto@gleeworld.org")
	g := []grants.Grant{{Email: "Alto@GleeWorld.org", PermissionKey: shared.PermBudgetCreation, IsActive: true}}

	verdict := Resolve(member, g, mustLookup(t, "budgets"), testNow)
	assert.True(t, verdict.CanAccess, "email match is case-insensitive")
	assert.False(t, verdict.CanManage, "grants never confer manage")
	assert.Equal(t, SourceUsername, verdict.Source)
}

func TestResolveExpiredOrInactiveGrantDenied(t *testing.T) {
	member := memberProfile("alto@gleeworld.org")
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)
	mod := mustLookup(t, "budgets")

	cases := map[string]grants.Grant{
		"expired":  {Email: member.Email, PermissionKey: shared.PermBudgetCreation, IsActive: true, ExpiresAt: &past},
		"inactive": {Email: member.Email, PermissionKey: shared.PermBudgetCreation, IsActive: false, ExpiresAt: &future},
		"other key": {Email: member.Email, PermissionKey: shared.PermContracts, IsActive: true},
		"other email": {Email: "someone.else@gleeworld.org", PermissionKey: shared.PermBudgetCreation, IsActive: true},
	}
	for name, g := range cases {
		verdict := Resolve(member, []grants.Grant{g}, mod, testNow)
		assert.False(t, verdict.CanAccess, name)
	}

	// A grant expiring in the future still works right now.
	g := grants.Grant{Email: member.Email, PermissionKey: shared.PermBudgetCreation, IsActive: true, ExpiresAt: &future}
	assert.True(t, Resolve(member, []grants.Grant{g}, mod, testNow).CanAccess)
}

func TestResolveGuestDeniedEverywhereButStandard(t *testing.T) {
	guest := profiles.Guest("u-ghost")
	for _, mod := range registry.Gated() {
		verdict := Resolve(guest, nil, mod, testNow)
		assert.False(t, verdict.CanAccess, mod.ID)
		assert.False(t, verdict.CanManage, mod.ID)
	}
}

func TestResolveAllCoversEveryModule(t *testing.T) {
	member := memberProfile("alto@gleeworld.org")
	verdicts := ResolveAll(member, nil, registry.All(), testNow)
	require.Len(t, verdicts, len(registry.All()))
	for _, mod := range registry.All() {
		_, ok := verdicts[mod.ID]
		assert.True(t, ok, mod.ID)
	}
}
