package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// DefaultDir is where `cmd/migrate -cmd=create` writes new files.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

const embeddedDir = "migrations"

// Run executes a goose command against Postgres. An empty dir runs the
// migrations compiled into the binary, so the api can migrate itself without
// the source tree.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dir, err := useSource(dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	dir, err = useSource(dir)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current < target:
		err = goose.UpToContext(ctx, db, dir, target)
	case current > target:
		err = goose.DownToContext(ctx, db, dir, target)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return nil
}

// useSource points goose at the embedded files when dir is empty and at the
// filesystem otherwise. SQL migrations target Postgres only; sqlite
// databases go through AutoMigrate.
func useSource(dir string) (string, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == "" {
		goose.SetBaseFS(embedded)
		return embeddedDir, nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}

// EmbeddedVersions lists the migration files compiled into the binary.
func EmbeddedVersions() ([]string, error) {
	entries, err := fs.ReadDir(embedded, embeddedDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// AutoMigrate creates the schema straight from the models. Used for sqlite
// development databases and tests.
func AutoMigrate(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
