package core

import "context"

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// UserStore defines user-related database operations
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error

	UserByID(ctx context.Context, id string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)

	UpdateUser(ctx context.Context, u *User) error
}

// AccountStore defines credential-account database operations.
// CreateAccount must return ErrDuplicate when (provider, providerID) already
// exists; callers rely on that to resolve concurrent first-login races.
//
// CreateUserWithAccount writes a user and its first account as one atomic
// unit: on any failure, including ErrDuplicate from either the email or the
// provider pair, nothing is persisted. A user row must never exist without
// the account created alongside it.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *Account) error
	CreateUserWithAccount(ctx context.Context, u *User, a *Account) error

	AccountByProvider(ctx context.Context, provider, providerID string) (*Account, error)
	AccountsByUser(ctx context.Context, userID, provider string) ([]*Account, error)
}

// RoleStore defines role-definition persistence. SeedRoles inserts every
// missing definition in one atomic unit: either all absent roles are added or
// none are. Existing roles are left untouched. It returns how many roles were
// newly inserted.
type RoleStore interface {
	SeedRoles(ctx context.Context, defs []RoleDefinition) (int, error)
	Roles(ctx context.Context) ([]RoleDefinition, error)
}

// MembershipStore reads workspace role assignments. The auth core consumes
// these; it never writes them.
type MembershipStore interface {
	MemberRole(ctx context.Context, userID, workspaceID string) (Role, error)
}

// AuthStorage is the full storage surface the auth core depends on.
type AuthStorage interface {
	UserStore
	AccountStore
	RoleStore
	MembershipStore
}

// ============================================
// CACHE PORT
// ============================================

// RoleCache memoizes membership role lookups
type RoleCache interface {
	Get(key string) (Role, error)
	Set(key string, role Role) error
	Delete(key string) error
	Clear() error
}

// RoleCacheWithStats extends RoleCache with statistics tracking
type RoleCacheWithStats interface {
	RoleCache
	Stats() CacheStats
}
