package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"schoolapi/internal/config"
	"schoolapi/internal/database"
	"schoolapi/internal/database/migration"
	"schoolapi/internal/rbac"
	"schoolapi/internal/repository/postgres"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Apply schema migrations and seed default roles and permissions",
		RunE:  runInitDB,
	}
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := migration.EnsureMigrated(migrateCtx, db, time.Local, cfg.Database.Host); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	seeder := rbac.NewSeeder(
		postgres.NewRolePostgres(db),
		postgres.NewPermissionPostgres(db),
		postgres.NewMatrixPostgres(db),
		postgres.NewSettingPostgres(db),
	)
	roles, err := seeder.EnsureSeeded(migrateCtx)
	if err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	cmd.Printf("Database initialized. Seeded roles:\n")
	for name, role := range roles {
		cmd.Printf("  %-8s (id %d)\n", name, role.ID)
	}
	return nil
}
