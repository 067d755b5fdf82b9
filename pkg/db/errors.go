package db

import (
	"errors"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports a unique-constraint failure from postgres or
// sqlite. With constraints given, the violated constraint must be one of them.
func IsUniqueViolation(err error, constraints ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation &&
			(len(constraints) == 0 || slices.Contains(constraints, pgErr.ConstraintName))
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	return slices.ContainsFunc(constraints, func(name string) bool { return strings.Contains(msg, name) })
}
