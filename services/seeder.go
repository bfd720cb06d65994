package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamo-dev/teamo/core"
)

// RoleSeeder persists the static role-permission table. Seeding is idempotent
// and all-or-nothing: roles already present keep their stored permission sets,
// missing ones are inserted in a single transaction, and a mid-run failure
// leaves prior state untouched.
type RoleSeeder struct {
	db     core.RoleStore
	logger *slog.Logger
}

func NewRoleSeeder(db core.RoleStore, logger *slog.Logger) *RoleSeeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleSeeder{db: db, logger: logger}
}

// Seed writes every defined role that is not yet persisted.
func (s *RoleSeeder) Seed(ctx context.Context) error {
	defs := core.DefinedRoles()

	added, err := s.db.SeedRoles(ctx, defs)
	if err != nil {
		return fmt.Errorf("seeding roles: %w", err)
	}

	s.logger.Info("role seed complete",
		"defined", len(defs),
		"added", added,
		"existing", len(defs)-added,
	)
	return nil
}
