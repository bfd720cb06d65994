package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teamo-dev/teamo/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func seedUser(t *testing.T, storage *FakeStorage) *core.User {
	t.Helper()
	user := &core.User{ID: "user-1", Email: "alice@example.com", Name: "Alice"}
	if err := storage.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user failed: %v", err)
	}
	return user
}

// signExpired builds a credential that expired in the past, signed with the
// given secret.
func signExpired(t *testing.T, secret, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test credential failed: %v", err)
	}
	return signed
}

// Requirement: a valid, unexpired credential resolves to the user it was
// issued for.
func TestSessionManager_IssueResolve(t *testing.T) {
	storage := NewFakeStorage()
	user := seedUser(t, storage)
	sm := NewSessionManager(testSecret, time.Hour, storage)

	credential, err := sm.Issue(user)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	resolved, err := sm.Resolve(context.Background(), credential)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("Resolve() user = %s, want %s", resolved.ID, user.ID)
	}
}

// Requirement: tampered, expired, malformed, or orphaned credentials resolve
// to an unauthenticated state, never to a user.
func TestSessionManager_ResolveRejections(t *testing.T) {
	storage := NewFakeStorage()
	user := seedUser(t, storage)
	sm := NewSessionManager(testSecret, time.Hour, storage)

	valid, err := sm.Issue(user)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name       string
		credential string
		wantErr    error
	}{
		{
			name:       "empty credential",
			credential: "",
			wantErr:    core.ErrInvalidToken,
		},
		{
			name:       "garbage credential",
			credential: "not-a-jwt",
			wantErr:    core.ErrInvalidToken,
		},
		{
			name:       "tampered signature",
			credential: valid + "x",
			wantErr:    core.ErrInvalidToken,
		},
		{
			name:       "signed with a different secret",
			credential: mustSign(t, "another-secret-another-secret-32", user.ID, time.Hour),
			wantErr:    core.ErrInvalidToken,
		},
		{
			name:       "expired credential",
			credential: signExpired(t, testSecret, user.ID),
			wantErr:    core.ErrSessionExpired,
		},
		{
			name:       "credential for a deleted user",
			credential: mustSign(t, testSecret, "gone-user", time.Hour),
			wantErr:    core.ErrInvalidToken,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := sm.Resolve(context.Background(), test.credential)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

// Requirement: the credential payload carries only the subject reference and
// timestamps - no email, name, or role data to go stale.
func TestSessionManager_MinimalClaims(t *testing.T) {
	storage := NewFakeStorage()
	user := seedUser(t, storage)
	sm := NewSessionManager(testSecret, time.Hour, storage)

	credential, err := sm.Issue(user)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		t.Fatalf("credential is not a compact JWT: %d segments", len(parts))
	}

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(credential, &claims)
	if err != nil {
		t.Fatalf("parsing credential failed: %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("credential must carry issued-at and expiry")
	}

	// Expiry is fixed at issuance: exactly maxAge after issued-at.
	gap := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if gap != time.Hour {
		t.Errorf("expiry window = %v, want %v", gap, time.Hour)
	}
}

func TestSessionManager_DefaultMaxAge(t *testing.T) {
	sm := NewSessionManager(testSecret, 0, NewFakeStorage())
	if sm.MaxAge() != DefaultSessionMaxAge {
		t.Errorf("MaxAge() = %v, want %v", sm.MaxAge(), DefaultSessionMaxAge)
	}
}

func mustSign(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test credential failed: %v", err)
	}
	return signed
}
