package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"

	"github.com/teamo-dev/teamo/core"
	"github.com/teamo-dev/teamo/crypto"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// AccountService owns the identity lifecycle: local registration, local
// credential verification, and federated login with account linking.
type AccountService struct {
	db        core.AuthStorage
	passwords crypto.PasswordHandler
	logger    *slog.Logger
}

func NewAccountService(db core.AuthStorage, passwords crypto.PasswordHandler, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		db:        db,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput contains the data needed to register a local user
type RegisterInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar,omitempty"`
}

func (in *RegisterInput) validate() error {
	if in.Email == "" {
		return core.ErrEmailRequired
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return core.ErrInvalidEmail
	}
	if in.Password == "" {
		return core.ErrPasswordRequired
	}
	if len(in.Password) < minPasswordLen {
		return core.ErrPasswordTooShort
	}
	if len(in.Password) > maxPasswordLen {
		return core.ErrPasswordTooLong
	}
	return nil
}

// Register creates a new user with an email/password credential account.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*core.User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	email := core.NormalizeEmail(input.Email)

	// Step 1: Check if user already exists
	existing, err := s.db.UserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrEmailExists
	}

	// Step 2: Hash the password
	hashed, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the user and its credential account in one atomic write.
	// A concurrent registration for the same email loses on the unique
	// constraint, not on the check above; a fault part-way persists nothing,
	// so a failed registration can always be retried with the same email.
	user := &core.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      input.Name,
		AvatarURL: input.Avatar,
	}
	account := &core.Account{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Provider:   core.ProviderCredential,
		ProviderID: user.ID, // for the credential provider, subject id = user id
		Password:   &hashed,
	}
	if err := s.db.CreateUserWithAccount(ctx, user, account); err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return nil, core.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Verify checks an email/password pair against the local credential account.
// Every failure returns ErrInvalidCredentials: callers must not be able to
// tell a missing user from a wrong password or a federated-only account.
// Verify never mutates anything.
func (s *AccountService) Verify(ctx context.Context, email, password string) (*core.User, error) {
	user, err := s.db.UserByEmail(ctx, core.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Burn a hash anyway so response time does not leak existence.
			s.dummyVerify(password)
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	accounts, err := s.db.AccountsByUser(ctx, user.ID, core.ProviderCredential)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if len(accounts) == 0 || accounts[0].Password == nil {
		s.dummyVerify(password)
		return nil, core.ErrInvalidCredentials
	}

	valid, err := s.passwords.Verify(password, *accounts[0].Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	return user, nil
}

func (s *AccountService) dummyVerify(password string) {
	if a, ok := s.passwords.(*crypto.Argon2); ok {
		a.DummyVerify(password)
	}
}

// LoginOrCreate resolves a normalized federated identity to a user, creating
// or linking accounts as needed. The boolean reports whether a new user was
// created. The operation is idempotent: submitting the same identity twice,
// sequentially or concurrently, yields one user and one provider account.
//
// Races on the create path are settled by storage unique constraints, not by
// locks: a duplicate-key failure means another request won, so the service
// re-reads and returns the now-existing row.
func (s *AccountService) LoginOrCreate(ctx context.Context, identity *core.NormalizedIdentity) (*core.User, bool, error) {
	if identity == nil || identity.ProviderID == "" {
		return nil, false, core.ErrIdentityIncomplete
	}

	// Step (a): the provider pair is the primary dedup key.
	account, err := s.db.AccountByProvider(ctx, identity.Provider, identity.ProviderID)
	if err == nil {
		user, err := s.db.UserByID(ctx, account.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load linked user: %w", err)
		}
		return user, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up provider account: %w", err)
	}

	// Step (b): same email via another login method -> link, don't duplicate.
	if identity.Email != "" {
		user, err := s.db.UserByEmail(ctx, identity.Email)
		if err == nil {
			linked, err := s.linkAccount(ctx, user, identity)
			if err != nil {
				return nil, false, err
			}
			return linked, false, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to look up user by email: %w", err)
		}
	}

	// Step (c): first login ever for this identity. User and provider account
	// go in as one atomic write: a lost race rolls both back, so a losing
	// request never strands a user row without an account.
	user := &core.User{
		ID:        uuid.NewString(),
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.AvatarURL,
	}
	err = s.db.CreateUserWithAccount(ctx, user, &core.Account{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Provider:   identity.Provider,
		ProviderID: identity.ProviderID,
	})
	if err == nil {
		s.logger.Info("federated user created", "user_id", user.ID, "provider", identity.Provider)
		return user, true, nil
	}
	if !errors.Is(err, core.ErrDuplicate) {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	// A concurrent first-login won on either the provider pair or the email.
	// If the pair now exists, its owner is the user.
	existing, err := s.db.AccountByProvider(ctx, identity.Provider, identity.ProviderID)
	if err == nil {
		owner, err := s.db.UserByID(ctx, existing.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load linked user: %w", err)
		}
		return owner, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to re-read account after conflict: %w", err)
	}

	// Otherwise the winner holds the same email without this pair yet: link.
	winner, err := s.db.UserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to re-read user after conflict: %w", err)
	}
	linked, err := s.linkAccount(ctx, winner, identity)
	if err != nil {
		return nil, false, err
	}
	return linked, false, nil
}

// linkAccount attaches the provider identity to the user and returns the
// user that ends up owning it. A duplicate key means a concurrent request
// already linked the pair; the existing row wins and its user is returned.
func (s *AccountService) linkAccount(ctx context.Context, user *core.User, identity *core.NormalizedIdentity) (*core.User, error) {
	account := &core.Account{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Provider:   identity.Provider,
		ProviderID: identity.ProviderID,
	}
	err := s.db.CreateAccount(ctx, account)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrDuplicate) {
		return nil, fmt.Errorf("failed to link account: %w", err)
	}

	existing, err := s.db.AccountByProvider(ctx, identity.Provider, identity.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read account after conflict: %w", err)
	}
	if existing.UserID == user.ID {
		return user, nil
	}
	owner, err := s.db.UserByID(ctx, existing.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked user: %w", err)
	}
	return owner, nil
}
