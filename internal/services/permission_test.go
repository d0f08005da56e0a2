package services

import "testing"

func TestRolePermissions_SupersetOrdering(t *testing.T) {
	// Each role must grant everything the role below it grants.
	pairs := []struct {
		wider, narrower Role
	}{
		{RoleOwner, RoleMember},
		{RoleMember, RoleInvited},
		{RoleInvited, RoleNone},
	}

	for _, pair := range pairs {
		for perm := range rolePermissions[pair.narrower] {
			if !RoleHas(pair.wider, perm) {
				t.Errorf("%s should grant %s because %s does", pair.wider, perm, pair.narrower)
			}
		}
	}
}

func TestRolePermissions_None(t *testing.T) {
	if len(rolePermissions[RoleNone]) != 0 {
		t.Errorf("none role must grant nothing, got %v", PermissionsFor(RoleNone))
	}
}

func TestRoleHas(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleOwner, PermUsersInvite, true},
		{RoleOwner, PermProjectDelete, true},
		{RoleMember, PermDetailsView, true},
		{RoleMember, PermDetailsUpdate, true},
		{RoleMember, PermUsersInvite, false},
		{RoleMember, PermUsersRemove, false},
		{RoleMember, PermProjectDelete, false},
		{RoleInvited, PermDetailsView, true},
		{RoleInvited, PermDetailsUpdate, false},
		{RoleInvited, PermUsersView, false},
		{RoleNone, PermDetailsView, false},
	}

	for _, tt := range tests {
		if got := RoleHas(tt.role, tt.perm); got != tt.want {
			t.Errorf("RoleHas(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestMasksAsNotFound(t *testing.T) {
	tests := []struct {
		name  string
		perms []Permission
		want  bool
	}{
		{"member tier only", []Permission{PermUsersView}, true},
		{"owner tier only", []Permission{PermUsersInvite, PermProjectDelete}, true},
		{"invited tier present", []Permission{PermDetailsView}, false},
		{"mixed tiers", []Permission{PermUsersView, PermDetailsView}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := masksAsNotFound(tt.perms); got != tt.want {
				t.Errorf("masksAsNotFound(%v) = %v, want %v", tt.perms, got, tt.want)
			}
		})
	}
}
