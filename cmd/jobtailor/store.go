package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobtailor/internal/persist"
	"jobtailor/internal/shared/config"
	"jobtailor/internal/shared/storage/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(commandContext(cmd), func(ctx context.Context, sqlDB *sql.DB) error {
			return db.RunMigrations(ctx, sqlDB)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations are applied",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(commandContext(cmd), func(ctx context.Context, sqlDB *sql.DB) error {
			return db.MigrationStatus(ctx, sqlDB)
		})
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete stored résumés and job descriptions not touched recently",
	RunE:  runPurge,
}

var purgeOlderThan time.Duration

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 30*24*time.Hour, "Remove entries not written for this long")

	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd, purgeCmd)
}

func runPurge(cmd *cobra.Command, _ []string) error {
	if purgeOlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}
	return withDB(commandContext(cmd), func(ctx context.Context, sqlDB *sql.DB) error {
		backend := &persist.PGBackend{DB: sqlDB}
		n, err := backend.PurgeBefore(ctx, time.Now().UTC().Add(-purgeOlderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries\n", n)
		return nil
	})
}

func withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(db.ProfileCLI))
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	defer sqlDB.Close()
	return fn(ctx, sqlDB)
}
