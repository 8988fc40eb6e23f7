package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate wraps unique-constraint violations so services can report a conflict.
var ErrDuplicate = errors.New("duplicate key")

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// wrap annotates err with op and folds driver-specific unique violations into ErrDuplicate.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := duplicateConstraint(err); ok {
		return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func duplicateConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "unknown", true
	}
	return "", false
}

// offset turns a 1-based page into a row offset.
func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
