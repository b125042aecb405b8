package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role      Role
		isAdmin   bool
		isManager bool
	}{
		{RoleUser, false, false},
		{RoleHR, false, false},
		{RoleManager, false, true},
		{RoleAdmin, true, true},
		{RoleSuperAdmin, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.isAdmin, tt.role.IsAdmin())
			assert.Equal(t, tt.isManager, tt.role.IsManager())
		})
	}
}

func TestUserJSONShape(t *testing.T) {
	raw := `{
		"id": 7,
		"username": "jsmith",
		"email": "j@example.com",
		"firstName": "John",
		"lastName": "Smith",
		"profileImageUrl": "http://localhost/user/image/jsmith",
		"role": "ROLE_MANAGER",
		"active": true,
		"notLocked": false
	}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "jsmith", u.Username)
	assert.Equal(t, RoleManager, u.Role)
	assert.True(t, u.Active)
	assert.False(t, u.NotLocked)
	assert.Equal(t, "John Smith", u.DisplayName())
	assert.Nil(t, u.JoinDate)
}
