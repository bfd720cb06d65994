// Package pgx implements the auth storage ports on PostgreSQL.
package pgx

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamo-dev/teamo/core"
)

//go:embed schema.sql
var schema string

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.AuthStorage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// Migrate applies the embedded schema. Every statement is IF NOT EXISTS, so
// running it on every boot is safe.
func (a *Adapter) Migrate(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, schema)
	return err
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// translateError maps driver errors onto the core sentinels callers match on.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.ErrDuplicate
	}
	return err
}
