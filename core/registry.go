package core

// Role represents an authorization tier within a workspace.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Permission represents a named capability checked on gated routes.
// The vocabulary is closed: routes may only require tokens defined here.
type Permission string

const (
	PermWorkspaceView     Permission = "workspace:view"
	PermWorkspaceEdit     Permission = "workspace:edit"
	PermWorkspaceDelete   Permission = "workspace:delete"
	PermWorkspaceSettings Permission = "workspace:settings"

	PermMemberAdd        Permission = "member:add"
	PermMemberRemove     Permission = "member:remove"
	PermMemberChangeRole Permission = "member:change-role"

	PermProjectCreate Permission = "project:create"
	PermProjectEdit   Permission = "project:edit"
	PermProjectDelete Permission = "project:delete"

	PermTaskCreate Permission = "task:create"
	PermTaskEdit   Permission = "task:edit"
	PermTaskDelete Permission = "task:delete"
)

// RoleDefinition is a named role and the permission set it grants.
// Definitions are immutable at runtime; only the seeder writes them.
type RoleDefinition struct {
	Name        Role         `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// rolePermissions is the single source of truth for the authorization model.
var rolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermWorkspaceView,
		PermWorkspaceEdit,
		PermWorkspaceDelete,
		PermWorkspaceSettings,
		PermMemberAdd,
		PermMemberRemove,
		PermMemberChangeRole,
		PermProjectCreate,
		PermProjectEdit,
		PermProjectDelete,
		PermTaskCreate,
		PermTaskEdit,
		PermTaskDelete,
	},
	RoleAdmin: {
		PermWorkspaceView,
		PermMemberAdd,
		PermProjectCreate,
		PermProjectEdit,
		PermProjectDelete,
		PermTaskCreate,
		PermTaskEdit,
		PermTaskDelete,
	},
	RoleMember: {
		PermWorkspaceView,
		PermTaskCreate,
		PermTaskEdit,
	},
}

// seedOrder fixes the order roles are persisted and listed in.
var seedOrder = []Role{RoleOwner, RoleAdmin, RoleMember}

// PermissionsFor returns the permissions granted to a role. It is a total
// function: an unknown role yields an empty set, never an error, so that
// authorization fails closed instead of failing open on bad data.
func PermissionsFor(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the role grants the permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// DefinedRoles returns every role definition in seed order.
func DefinedRoles() []RoleDefinition {
	defs := make([]RoleDefinition, 0, len(seedOrder))
	for _, name := range seedOrder {
		defs = append(defs, RoleDefinition{Name: name, Permissions: PermissionsFor(name)})
	}
	return defs
}
