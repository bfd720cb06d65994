package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamo-dev/teamo/core"
)

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query := `INSERT INTO users (id, email, name, avatar_url) VALUES ($1, NULLIF($2, ''), $3, $4) RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	err := a.pool.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.AvatarURL).Scan(&createdAt, &updatedAt)
	if err != nil {
		return translateError(err)
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) UserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT id, COALESCE(email, ''), name, avatar_url, created_at, updated_at FROM users WHERE id = $1`
	return a.scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT id, COALESCE(email, ''), name, avatar_url, created_at, updated_at FROM users WHERE email = $1`
	return a.scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) UpdateUser(ctx context.Context, user *core.User) error {
	q := `UPDATE users SET email = NULLIF($1, ''), name = $2, avatar_url = $3, updated_at = now() WHERE id = $4 RETURNING updated_at`

	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, q, user.Email, user.Name, user.AvatarURL, user.ID).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrNotFound
		}
		return translateError(err)
	}
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	var avatar *string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	user.AvatarURL = avatar
	return user, nil
}
