package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teamo-dev/teamo/core"
)

// DefaultSessionMaxAge is the fixed credential lifetime when none is configured.
const DefaultSessionMaxAge = 24 * time.Hour

// SessionManager issues and resolves the client-held session credential: an
// HS256-signed JWT carrying only the user id and its issue/expiry times.
//
// The credential is entirely client-held. There is no server-side session
// store and no revocation list: logout means deleting the client's cookie,
// and a compromised credential stays valid until it expires. That is an
// accepted tradeoff for stateless horizontal scaling, not an oversight.
type SessionManager struct {
	secret []byte
	maxAge time.Duration
	users  core.UserStore
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func NewSessionManager(secret string, maxAge time.Duration, users core.UserStore) *SessionManager {
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	return &SessionManager{
		secret: []byte(secret),
		maxAge: maxAge,
		users:  users,
	}
}

// MaxAge returns the fixed credential lifetime. Expiry is set once at
// issuance; it does not slide on activity.
func (sm *SessionManager) MaxAge() time.Duration {
	return sm.maxAge
}

// Issue signs a new credential for the user.
func (sm *SessionManager) Issue(user *core.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("signing session credential: %w", err)
	}
	return signed, nil
}

// Resolve verifies a credential and re-loads the user it references.
// Tampered, malformed, or expired credentials resolve to ErrInvalidToken or
// ErrSessionExpired; so does a credential for a user that no longer exists.
// These are resolved states, not faults - only storage failures are errors
// in the infrastructure sense.
func (sm *SessionManager) Resolve(ctx context.Context, credential string) (*core.User, error) {
	if credential == "" {
		return nil, core.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(credential, &sessionClaims{}, func(_ *jwt.Token) (any, error) {
		return sm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrSessionExpired
		}
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, core.ErrInvalidToken
	}

	user, err := sm.users.UserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Account removed after the credential was issued.
			return nil, core.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return user, nil
}
