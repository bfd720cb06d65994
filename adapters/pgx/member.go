package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/teamo-dev/teamo/core"
)

// MemberRole looks up the caller's role within one workspace. Membership rows
// are written by the business layer; the auth core only reads them.
func (a *Adapter) MemberRole(ctx context.Context, userID, workspaceID string) (core.Role, error) {
	q := `SELECT role FROM members WHERE user_id = $1 AND workspace_id = $2`

	var role string
	err := a.pool.QueryRow(ctx, q, userID, workspaceID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", core.ErrNotFound
		}
		return "", err
	}

	return core.Role(role), nil
}
