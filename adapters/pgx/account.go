package pgx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamo-dev/teamo/core"
)

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO accounts (id, user_id, provider, provider_id, password)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	err := a.pool.QueryRow(ctx, query,
		acc.ID, acc.UserID, acc.Provider, acc.ProviderID, acc.Password,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return translateError(err)
	}

	acc.CreatedAt = createdAt
	acc.UpdatedAt = updatedAt
	return nil
}

// CreateUserWithAccount inserts a user row and its first account row in one
// transaction. Either both land or neither does, so a fault between the two
// inserts cannot strand a user without any credential.
func (a *Adapter) CreateUserWithAccount(ctx context.Context, user *core.User, acc *core.Account) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userQuery := `INSERT INTO users (id, email, name, avatar_url) VALUES ($1, NULLIF($2, ''), $3, $4) RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, userQuery, user.ID, user.Email, user.Name, user.AvatarURL).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translateError(err)
	}

	accountQuery := `INSERT INTO accounts (id, user_id, provider, provider_id, password)
	                 VALUES ($1, $2, $3, $4, $5)
	                 RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, accountQuery,
		acc.ID, acc.UserID, acc.Provider, acc.ProviderID, acc.Password,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return translateError(err)
	}

	return tx.Commit(ctx)
}

func (a *Adapter) AccountByProvider(ctx context.Context, provider, providerID string) (*core.Account, error) {
	query := `SELECT id, user_id, provider, provider_id, password, created_at, updated_at
	          FROM accounts WHERE provider = $1 AND provider_id = $2`

	acc := &core.Account{}
	err := a.pool.QueryRow(ctx, query, provider, providerID).Scan(
		&acc.ID, &acc.UserID, &acc.Provider, &acc.ProviderID, &acc.Password, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}

	return acc, nil
}

func (a *Adapter) AccountsByUser(ctx context.Context, userID, provider string) ([]*core.Account, error) {
	query := `SELECT id, user_id, provider, provider_id, password, created_at, updated_at
	          FROM accounts WHERE user_id = $1 AND provider = $2`

	rows, err := a.pool.Query(ctx, query, userID, provider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		acc := &core.Account{}
		err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.Provider, &acc.ProviderID, &acc.Password, &acc.CreatedAt, &acc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
