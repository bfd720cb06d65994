package services

import (
	"context"
	"sync"

	"github.com/teamo-dev/teamo/core"
)

// FakeStorage is a test-only in-memory implementation of core.AuthStorage.
// It enforces the same uniqueness rules as the real schema (email, provider
// pair) and exposes error fields for behavior injection.
type FakeStorage struct {
	mu       sync.RWMutex
	users    map[string]*core.User           // by id
	accounts map[string]*core.Account        // by provider+"/"+providerID
	roles    map[core.Role][]core.Permission // seeded definitions
	members  map[string]core.Role            // by userID+"/"+workspaceID

	createUserErr    error
	userLookupErr    error
	createAccountErr error
	accountLookupErr error
	seedErr          error
	memberRoleErr    error
}

var _ core.AuthStorage = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		users:    make(map[string]*core.User),
		accounts: make(map[string]*core.Account),
		roles:    make(map[core.Role][]core.Permission),
		members:  make(map[string]core.Role),
	}
}

func (f *FakeStorage) CreateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createUserErr != nil {
		return f.createUserErr
	}
	if u.Email != "" {
		for _, existing := range f.users {
			if existing.Email == u.Email {
				return core.ErrDuplicate
			}
		}
	}
	if _, ok := f.users[u.ID]; ok {
		return core.ErrDuplicate
	}
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *FakeStorage) UserByID(_ context.Context, id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.userLookupErr != nil {
		return nil, f.userLookupErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *FakeStorage) UserByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.userLookupErr != nil {
		return nil, f.userLookupErr
	}
	if email == "" {
		return nil, core.ErrNotFound
	}
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *FakeStorage) UpdateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *FakeStorage) CreateAccount(_ context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createAccountErr != nil {
		return f.createAccountErr
	}
	key := a.Provider + "/" + a.ProviderID
	if _, ok := f.accounts[key]; ok {
		return core.ErrDuplicate
	}
	clone := *a
	f.accounts[key] = &clone
	return nil
}

func (f *FakeStorage) CreateUserWithAccount(_ context.Context, u *core.User, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createUserErr != nil {
		return f.createUserErr
	}
	if f.createAccountErr != nil {
		return f.createAccountErr
	}

	// Check every constraint before writing anything: all or nothing.
	if u.Email != "" {
		for _, existing := range f.users {
			if existing.Email == u.Email {
				return core.ErrDuplicate
			}
		}
	}
	if _, ok := f.users[u.ID]; ok {
		return core.ErrDuplicate
	}
	key := a.Provider + "/" + a.ProviderID
	if _, ok := f.accounts[key]; ok {
		return core.ErrDuplicate
	}

	userClone := *u
	f.users[u.ID] = &userClone
	accountClone := *a
	f.accounts[key] = &accountClone
	return nil
}

func (f *FakeStorage) AccountByProvider(_ context.Context, provider, providerID string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.accountLookupErr != nil {
		return nil, f.accountLookupErr
	}
	a, ok := f.accounts[provider+"/"+providerID]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *FakeStorage) AccountsByUser(_ context.Context, userID, provider string) ([]*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.accountLookupErr != nil {
		return nil, f.accountLookupErr
	}
	var out []*core.Account
	for _, a := range f.accounts {
		if a.UserID == userID && a.Provider == provider {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *FakeStorage) SeedRoles(_ context.Context, defs []core.RoleDefinition) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seedErr != nil {
		// All-or-nothing: a failed run inserts nothing.
		return 0, f.seedErr
	}
	added := 0
	for _, def := range defs {
		if _, ok := f.roles[def.Name]; ok {
			continue
		}
		perms := make([]core.Permission, len(def.Permissions))
		copy(perms, def.Permissions)
		f.roles[def.Name] = perms
		added++
	}
	return added, nil
}

func (f *FakeStorage) Roles(_ context.Context) ([]core.RoleDefinition, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var defs []core.RoleDefinition
	for name, perms := range f.roles {
		defs = append(defs, core.RoleDefinition{Name: name, Permissions: perms})
	}
	return defs, nil
}

func (f *FakeStorage) MemberRole(_ context.Context, userID, workspaceID string) (core.Role, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.memberRoleErr != nil {
		return "", f.memberRoleErr
	}
	role, ok := f.members[userID+"/"+workspaceID]
	if !ok {
		return "", core.ErrNotFound
	}
	return role, nil
}

// SetMemberRole seeds a workspace role assignment for tests.
func (f *FakeStorage) SetMemberRole(userID, workspaceID string, role core.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[userID+"/"+workspaceID] = role
}

// UserCount reports how many user rows exist.
func (f *FakeStorage) UserCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.users)
}

// AccountCount reports how many accounts exist for a provider pair.
func (f *FakeStorage) AccountCount(provider, providerID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, a := range f.accounts {
		if a.Provider == provider && a.ProviderID == providerID {
			count++
		}
	}
	return count
}
