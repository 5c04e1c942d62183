package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether the provided error references a unique
// constraint. When constraintName is provided, the helper only matches that constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	return matchesConstraint(err, pgUniqueViolation, constraintName, "duplicate key value", "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err was raised by a broken reference.
func IsForeignKeyViolation(err error) bool {
	return matchesConstraint(err, pgForeignKeyViolation, "", "violates foreign key constraint", "FOREIGN KEY constraint failed")
}

func matchesConstraint(err error, code, constraintName string, fallbacks ...string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == code && (constraintName == "" || pgxErr.ConstraintName == constraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code && (constraintName == "" || pqErr.Constraint == constraintName)
	}

	msg := err.Error()
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		return false
	}
	for _, fragment := range fallbacks {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
