package pgx

import (
	"context"
	"fmt"

	"github.com/teamo-dev/teamo/core"
)

// SeedRoles inserts every missing role definition inside one transaction.
// Existing roles keep their stored permission sets; a failure part-way rolls
// everything back so the registry is never half-seeded.
func (a *Adapter) SeedRoles(ctx context.Context, defs []core.RoleDefinition) (int, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO roles (name, permissions) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`

	added := 0
	for _, def := range defs {
		perms := make([]string, len(def.Permissions))
		for i, p := range def.Permissions {
			perms[i] = string(p)
		}

		tag, err := tx.Exec(ctx, query, string(def.Name), perms)
		if err != nil {
			return 0, fmt.Errorf("insert role %s: %w", def.Name, err)
		}
		added += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed transaction: %w", err)
	}
	return added, nil
}

func (a *Adapter) Roles(ctx context.Context) ([]core.RoleDefinition, error) {
	rows, err := a.pool.Query(ctx, `SELECT name, permissions FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []core.RoleDefinition
	for rows.Next() {
		var name string
		var perms []string
		if err := rows.Scan(&name, &perms); err != nil {
			return nil, err
		}

		def := core.RoleDefinition{Name: core.Role(name)}
		for _, p := range perms {
			def.Permissions = append(def.Permissions, core.Permission(p))
		}
		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}
