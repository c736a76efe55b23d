package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by repositories when the addressed record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrStaleVersion is returned when an optimistic update lost the race.
	ErrStaleVersion = errors.New("record version is stale")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure from
// Postgres, sqlite or Mongo. When constraintName is provided, the helper also
// requires the constraint (or index/column) name to appear in the error.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return constraintName == "" || strings.Contains(err.Error(), constraintName)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return constraintName == "" || pgErr.ConstraintName == constraintName || strings.Contains(pgErr.Message, constraintName)
	}

	if mongo.IsDuplicateKeyError(err) {
		return constraintName == "" || strings.Contains(err.Error(), constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// NormalizeNotFound folds driver specific "no rows" errors into ErrNotFound.
func NormalizeNotFound(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
