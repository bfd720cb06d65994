package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/teamo-dev/teamo/core"
	"github.com/teamo-dev/teamo/crypto"
)

func newAccountService(storage *FakeStorage) *AccountService {
	return NewAccountService(storage, crypto.NewArgon2(), nil)
}

// Requirement: Register creates a user plus a credential account, and rejects
// duplicate or malformed input.
func TestAccountService_Register(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		setup   func(*FakeStorage)
		wantErr error
	}{
		{
			name:  "creates user and credential account",
			input: RegisterInput{Email: "alice@example.com", Password: "SecurePass123!", Name: "Alice"},
		},
		{
			name:  "normalizes email casing",
			input: RegisterInput{Email: "Alice@Example.COM", Password: "SecurePass123!", Name: "Alice"},
		},
		{
			name:    "rejects empty email",
			input:   RegisterInput{Password: "SecurePass123!"},
			wantErr: core.ErrEmailRequired,
		},
		{
			name:    "rejects malformed email",
			input:   RegisterInput{Email: "not-an-email", Password: "SecurePass123!"},
			wantErr: core.ErrInvalidEmail,
		},
		{
			name:    "rejects empty password",
			input:   RegisterInput{Email: "alice@example.com"},
			wantErr: core.ErrPasswordRequired,
		},
		{
			name:    "rejects short password",
			input:   RegisterInput{Email: "alice@example.com", Password: "short"},
			wantErr: core.ErrPasswordTooShort,
		},
		{
			name:  "rejects duplicate email",
			input: RegisterInput{Email: "alice@example.com", Password: "SecurePass123!"},
			setup: func(storage *FakeStorage) {
				_ = storage.CreateUser(context.Background(), &core.User{ID: "u1", Email: "alice@example.com"})
			},
			wantErr: core.ErrEmailExists,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			storage := NewFakeStorage()
			if test.setup != nil {
				test.setup(storage)
			}
			service := newAccountService(storage)

			user, err := service.Register(context.Background(), test.input)

			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Register() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() unexpected error: %v", err)
			}
			if user.Email != core.NormalizeEmail(test.input.Email) {
				t.Errorf("Register() email = %q, want normalized %q", user.Email, core.NormalizeEmail(test.input.Email))
			}

			accounts, _ := storage.AccountsByUser(context.Background(), user.ID, core.ProviderCredential)
			if len(accounts) != 1 {
				t.Fatalf("expected 1 credential account, got %d", len(accounts))
			}
			if accounts[0].Password == nil {
				t.Error("credential account should carry a password hash")
			}
		})
	}
}

// Requirement: a registration that fails part-way persists nothing, so the
// same email can register again once the fault clears.
func TestAccountService_RegisterFailureLeavesNothing(t *testing.T) {
	storage := NewFakeStorage()
	service := newAccountService(storage)
	input := RegisterInput{Email: "alice@example.com", Password: "SecurePass123!", Name: "Alice"}

	storage.createAccountErr = errors.New("storage offline")
	if _, err := service.Register(context.Background(), input); err == nil {
		t.Fatal("Register() should fail while storage is down")
	}
	if storage.UserCount() != 0 {
		t.Fatalf("failed registration left %d user rows", storage.UserCount())
	}

	storage.createAccountErr = nil
	user, err := service.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("retry Register() failed: %v", err)
	}
	verified, err := service.Verify(context.Background(), input.Email, input.Password)
	if err != nil {
		t.Fatalf("Verify() after retry failed: %v", err)
	}
	if verified.ID != user.ID {
		t.Errorf("Verify() user = %s, want %s", verified.ID, user.ID)
	}
}

// Requirement: Verify returns the same generic error whether the user is
// missing, has no password, or the password is wrong - and never mutates.
func TestAccountService_Verify(t *testing.T) {
	storage := NewFakeStorage()
	service := newAccountService(storage)

	registered, err := service.Register(context.Background(), RegisterInput{
		Email:    "bob@example.com",
		Password: "CorrectHorse9!",
		Name:     "Bob",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	// A federated-only user: no credential account, no password.
	if _, _, err := service.LoginOrCreate(context.Background(), &core.NormalizedIdentity{
		Provider:   core.ProviderGoogle,
		ProviderID: "g-777",
		Email:      "carol@example.com",
	}); err != nil {
		t.Fatalf("LoginOrCreate() failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantUser string
		wantErr  error
	}{
		{
			name:     "correct credentials",
			email:    "bob@example.com",
			password: "CorrectHorse9!",
			wantUser: registered.ID,
		},
		{
			name:     "correct credentials with un-normalized email",
			email:    "  BOB@example.com ",
			password: "CorrectHorse9!",
			wantUser: registered.ID,
		},
		{
			name:     "wrong password",
			email:    "bob@example.com",
			password: "WrongPass123!",
			wantErr:  core.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "CorrectHorse9!",
			wantErr:  core.ErrInvalidCredentials,
		},
		{
			name:     "federated-only account",
			email:    "carol@example.com",
			password: "AnyPassword123!",
			wantErr:  core.ErrInvalidCredentials,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			before := storage.UserCount()

			user, err := service.Verify(context.Background(), test.email, test.password)

			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Verify() error = %v, want %v", err, test.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Verify() unexpected error: %v", err)
				}
				if user.ID != test.wantUser {
					t.Errorf("Verify() user = %s, want %s", user.ID, test.wantUser)
				}
			}

			if storage.UserCount() != before {
				t.Error("Verify() must not mutate storage")
			}
		})
	}
}

// Requirement: LoginOrCreate is idempotent on (provider, providerID) and
// links by email instead of duplicating users.
func TestAccountService_LoginOrCreate(t *testing.T) {
	google := func(id, email string) *core.NormalizedIdentity {
		return &core.NormalizedIdentity{Provider: core.ProviderGoogle, ProviderID: id, Email: email, Name: "Someone"}
	}

	t.Run("creates user on first login", func(t *testing.T) {
		storage := NewFakeStorage()
		service := newAccountService(storage)

		user, created, err := service.LoginOrCreate(context.Background(), google("g1", "a@x.com"))
		if err != nil {
			t.Fatalf("LoginOrCreate() failed: %v", err)
		}
		if !created {
			t.Error("expected created=true on first login")
		}
		if user.Email != "a@x.com" {
			t.Errorf("user email = %q, want a@x.com", user.Email)
		}
	})

	t.Run("second login returns same user", func(t *testing.T) {
		storage := NewFakeStorage()
		service := newAccountService(storage)

		first, _, err := service.LoginOrCreate(context.Background(), google("g1", "a@x.com"))
		if err != nil {
			t.Fatalf("first LoginOrCreate() failed: %v", err)
		}
		second, created, err := service.LoginOrCreate(context.Background(), google("g1", "a@x.com"))
		if err != nil {
			t.Fatalf("second LoginOrCreate() failed: %v", err)
		}
		if created {
			t.Error("expected created=false on repeat login")
		}
		if first.ID != second.ID {
			t.Errorf("got two users: %s and %s", first.ID, second.ID)
		}
		if storage.UserCount() != 1 {
			t.Errorf("expected 1 user, got %d", storage.UserCount())
		}
	})

	t.Run("links new provider to existing email", func(t *testing.T) {
		storage := NewFakeStorage()
		service := newAccountService(storage)

		local, err := service.Register(context.Background(), RegisterInput{
			Email:    "a@x.com",
			Password: "SecurePass123!",
		})
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}

		user, created, err := service.LoginOrCreate(context.Background(), google("g1", "a@x.com"))
		if err != nil {
			t.Fatalf("LoginOrCreate() failed: %v", err)
		}
		if created {
			t.Error("linking must not report a new user")
		}
		if user.ID != local.ID {
			t.Errorf("linked to user %s, want %s", user.ID, local.ID)
		}
		if storage.UserCount() != 1 {
			t.Errorf("expected 1 user after linking, got %d", storage.UserCount())
		}
		if n := storage.AccountCount(core.ProviderGoogle, "g1"); n != 1 {
			t.Errorf("expected 1 google account, got %d", n)
		}
	})

	t.Run("rejects identity without subject id", func(t *testing.T) {
		storage := NewFakeStorage()
		service := newAccountService(storage)

		_, _, err := service.LoginOrCreate(context.Background(), google("", "a@x.com"))
		if !errors.Is(err, core.ErrIdentityIncomplete) {
			t.Fatalf("error = %v, want ErrIdentityIncomplete", err)
		}
		if storage.UserCount() != 0 {
			t.Error("incomplete identity must not touch storage")
		}
	})

	t.Run("concurrent first logins yield one user", func(t *testing.T) {
		storage := NewFakeStorage()
		service := newAccountService(storage)

		const callers = 8
		results := make([]*core.User, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _, errs[i] = service.LoginOrCreate(context.Background(), google("g1", "a@x.com"))
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			if errs[i] != nil {
				t.Fatalf("caller %d failed: %v", i, errs[i])
			}
			if results[i].ID != results[0].ID {
				t.Fatalf("caller %d got user %s, caller 0 got %s", i, results[i].ID, results[0].ID)
			}
		}
		if storage.UserCount() != 1 {
			t.Errorf("expected exactly 1 user, got %d", storage.UserCount())
		}
		if n := storage.AccountCount(core.ProviderGoogle, "g1"); n != 1 {
			t.Errorf("expected exactly 1 provider account, got %d", n)
		}
	})

	t.Run("concurrent logins without email leave no extra users", func(t *testing.T) {
		// A provider may withhold the email entirely, so the email unique
		// constraint cannot backstop this race; only the provider pair can.
		storage := NewFakeStorage()
		service := newAccountService(storage)
		identity := &core.NormalizedIdentity{Provider: core.ProviderGitHub, ProviderID: "77", Name: "Someone"}

		const callers = 8
		results := make([]*core.User, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _, errs[i] = service.LoginOrCreate(context.Background(), identity)
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			if errs[i] != nil {
				t.Fatalf("caller %d failed: %v", i, errs[i])
			}
			if results[i].ID != results[0].ID {
				t.Fatalf("caller %d got user %s, caller 0 got %s", i, results[i].ID, results[0].ID)
			}
		}
		if storage.UserCount() != 1 {
			t.Errorf("expected exactly 1 user, got %d", storage.UserCount())
		}
		if n := storage.AccountCount(core.ProviderGitHub, "77"); n != 1 {
			t.Errorf("expected exactly 1 provider account, got %d", n)
		}
	})

	t.Run("federated signup never grants a password login", func(t *testing.T) {
		storage := NewFakeStorage()
		service := newAccountService(storage)

		_, _, err := service.LoginOrCreate(context.Background(), google("g1", "a@x.com"))
		if err != nil {
			t.Fatalf("LoginOrCreate() failed: %v", err)
		}
		_, _, err = service.LoginOrCreate(context.Background(), google("g1", "a@x.com"))
		if err != nil {
			t.Fatalf("repeat LoginOrCreate() failed: %v", err)
		}

		_, err = service.Verify(context.Background(), "a@x.com", "AnyPassword123!")
		if !errors.Is(err, core.ErrInvalidCredentials) {
			t.Fatalf("Verify() error = %v, want ErrInvalidCredentials", err)
		}
	})
}
