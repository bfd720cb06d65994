package core

import (
	"strings"
	"time"
)

// User represents an identity record in the system
//
// This is the "identity" - who someone is. There is exactly one User per
// normalized email address, regardless of how many login methods they have.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account represents an authentication method attached to a User
//
// This is the "credential" - how someone proves who they are. A user has one
// Account per login method: the local password credential or a federated
// provider identity. (Provider, ProviderID) is unique across the system.
type Account struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Provider   string    `json:"provider"` // "credential", "google", "github"
	ProviderID string    `json:"providerId"`
	Password   *string   `json:"-"` // Never expose in JSON
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Known account providers.
const (
	ProviderCredential = "credential"
	ProviderGoogle     = "google"
	ProviderGitHub     = "github"
)

// NormalizedIdentity is a provider-agnostic view of an external profile.
// ProviderID is the provider's stable subject identifier and is the dedup key
// for account linking; identities without it are rejected before any write.
type NormalizedIdentity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  *string
}

// Membership assigns a role to a user within one workspace. Workspace
// semantics live in the business layer; the auth core only reads the role.
type Membership struct {
	UserID      string    `json:"userId"`
	WorkspaceID string    `json:"workspaceId"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// NormalizeEmail canonicalizes an email address for lookup and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
