package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleeworld/gleeworld/internal/shared"
)

func TestKnownBoardRole(t *testing.T) {
	assert.True(t, KnownBoardRole(BoardPresident))
	assert.True(t, KnownBoardRole(BoardDataAnalyst))
	assert.False(t, KnownBoardRole("social-chair"))
	assert.False(t, KnownBoardRole(""))
}

func TestBoardRolesAreAllDisplayNamed(t *testing.T) {
	roles := BoardRoles()
	require.NotEmpty(t, roles)
	for _, role := range roles {
		name := BoardRoleDisplayName(role)
		assert.NotEmpty(t, name, role)
	}
}

func TestBoardRoleDisplayNameFallsBackToTitleCase(t *testing.T) {
	assert.Equal(t, "Social Chair", BoardRoleDisplayName("social-chair"))
}

func TestBoardPermissionKeysIncludeInherited(t *testing.T) {
	keys := BoardPermissionKeys(BoardPresident)
	assert.Contains(t, keys, shared.PermAdminPanel, "inherited from the chief of staff")
	assert.Contains(t, keys, shared.PermManagePermissions)

	keys = BoardPermissionKeys(BoardChaplain)
	assert.NotContains(t, keys, shared.PermAdminPanel)
}

func TestBoardGrantForUnknownKey(t *testing.T) {
	_, ok := boardGrantFor(BoardChaplain, shared.PermSystemSettings)
	assert.False(t, ok)

	g, ok := boardGrantFor(BoardChaplain, shared.PermHandbook)
	require.True(t, ok)
	assert.True(t, g.View)
	assert.False(t, g.Manage)
}

func TestEveryBoardPermissionKeyMapsToAModuleScope(t *testing.T) {
	scopes := make(map[string]struct{})
	for _, key := range shared.ModuleScopes() {
		scopes[key] = struct{}{}
	}
	for role, table := range boardPermissions {
		for key := range table {
			_, ok := scopes[key]
			assert.True(t, ok, "role %s references unknown key %s", role, key)
		}
	}
}
