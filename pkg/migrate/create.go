package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// migrationTemplate is written for every new file. Postgres runs each goose
// section in its own transaction unless told otherwise.
const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<slug>.sql and returns its
// path. A name whose slug already exists in dir is rejected.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := migrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	existing, err := filepath.Glob(filepath.Join(dir, "*_"+slug+".sql"))
	if err != nil {
		return "", fmt.Errorf("scan %q: %w", dir, err)
	}
	if len(existing) > 0 {
		return "", fmt.Errorf("migration %q already exists as %s", slug, filepath.Base(existing[0]))
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format(versionLayout), slug))
	if err := os.WriteFile(path, []byte(fmt.Sprintf(migrationTemplate, slug)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

// migrationSlug lowercases name and collapses every run of other characters
// into a single underscore.
func migrationSlug(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}
