package db

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

var gooseSetup = sync.OnceValue(func() error {
	goose.SetBaseFS(migrationFiles)
	return goose.SetDialect("postgres")
})

// RunMigrations brings session_entries up to date. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return withGoose(database, func() error { return goose.UpContext(ctx, database, migrationDir) })
}

// MigrationStatus logs which embedded migrations have been applied.
func MigrationStatus(ctx context.Context, database *sql.DB) error {
	return withGoose(database, func() error { return goose.StatusContext(ctx, database, migrationDir) })
}

func withGoose(database *sql.DB, fn func() error) error {
	if database == nil {
		return nil
	}
	if err := gooseSetup(); err != nil {
		return err
	}
	return fn()
}
