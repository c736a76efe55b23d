package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// ValidateDir checks every .sql file in dir: the name must be
// <version>_<slug>.sql, versions and slugs must be unique, and the body
// needs an Up section followed by a Down section. All problems are reported
// together.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	versions := map[string]string{}
	slugs := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if prev, ok := versions[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
		}
		if prev, ok := slugs[m[2]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration name %q in %q and %q", m[2], prev, name))
		}
		versions[m[1]] = name
		slugs[m[2]] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkSections(name, string(body)))
	}

	if errs == nil && len(versions) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return errs
}

func checkSections(name, body string) error {
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	case down < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	case down < up:
		return fmt.Errorf("migration %q has its Down section before Up", name)
	}
	return nil
}
