package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleSet(t *testing.T) {
	set := NewRoleSet("User", "Admin", "User", "")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("Admin"))
	assert.False(t, set.Has(""))
	assert.False(t, set.Has("admin"))
	assert.Equal(t, []string{"Admin", "User"}, set.Sorted())
}

func TestRoleSetIntersect(t *testing.T) {
	held := NewRoleSet("User", "Auditor")

	assert.Equal(t, []string{"User"}, held.Intersect(NewRoleSet("Admin", "User")).Sorted())
	assert.Zero(t, held.Intersect(NewRoleSet("Admin")).Len())
	assert.Zero(t, held.Intersect(nil).Len())
}

func TestRequirements(t *testing.T) {
	assert.Equal(t, Requirement{}, Authenticated())
	assert.Equal(t, Requirement{Anonymous: true}, AllowAnonymous())
	assert.Equal(t, []string{"Admin", "User"}, RequireRoles("Admin", "User").Roles)
}
