package database

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err came from a unique index. Postgres
// errors are translated by gorm; SQLite (tests) reports it in the message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// IsNotFound reports whether err is gorm's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ValidID reports whether id can name a row. Ids are UUIDs; Postgres rejects
// anything else in a uuid comparison, so callers treat an invalid id as absent.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
