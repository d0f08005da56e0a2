package services

// Role is a derived classification of a user's relationship to a project.
// It is never stored: the access service recomputes it from persisted facts
// on every check.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleMember  Role = "member"
	RoleInvited Role = "invited"
	RoleNone    Role = "none"
)

// Permission is a named capability on a project, namespaced by resource.
type Permission string

const (
	PermUsersView             Permission = "users.view"
	PermUsersInvite           Permission = "users.invite"
	PermUsersRemove           Permission = "users.remove"
	PermUsersCancelInvitation Permission = "users.cancelInvitation"
	PermDetailsView           Permission = "details.view"
	PermDetailsUpdate         Permission = "details.update"
	PermProjectDelete         Permission = "project.delete"
	PermNotesView             Permission = "notes.view"
	PermNotesEdit             Permission = "notes.edit"
)

// rolePermissions is the single source of truth for what each role may do.
// Owner is a superset of member, which is a superset of invited. None grants
// nothing. Adding a permission means adding entries here and nowhere else.
var rolePermissions = map[Role]map[Permission]bool{
	RoleInvited: {
		PermDetailsView: true,
	},
	RoleMember: {
		PermDetailsView:   true,
		PermDetailsUpdate: true,
		PermUsersView:     true,
		PermNotesView:     true,
		PermNotesEdit:     true,
	},
	RoleOwner: {
		PermDetailsView:           true,
		PermDetailsUpdate:         true,
		PermUsersView:             true,
		PermUsersInvite:           true,
		PermUsersRemove:           true,
		PermUsersCancelInvitation: true,
		PermProjectDelete:         true,
		PermNotesView:             true,
		PermNotesEdit:             true,
	},
	RoleNone: {},
}

// RoleHas reports whether the role holds the permission.
func RoleHas(role Role, perm Permission) bool {
	return rolePermissions[role][perm]
}

// PermissionsFor returns a copy of the permission set granted to role.
func PermissionsFor(role Role) []Permission {
	set := rolePermissions[role]
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	return perms
}

// grantedToInvited reports whether the permission is part of the invited
// role's viewing rights. Denials of member-or-above permissions are masked
// as "not found" so a project's existence is not confirmed to outsiders;
// denials of invited-tier permissions are plain "forbidden" because the
// route already implies the project exists.
func grantedToInvited(perm Permission) bool {
	return rolePermissions[RoleInvited][perm]
}

// masksAsNotFound reports whether a denial of the requested permissions
// must be presented as a missing resource.
func masksAsNotFound(perms []Permission) bool {
	for _, p := range perms {
		if grantedToInvited(p) {
			return false
		}
	}
	return true
}
