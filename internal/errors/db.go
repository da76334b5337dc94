package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// detailKeyRe pulls the column name from the Detail line of a
// constraint violation, e.g. `Key (email)=(a@b.c) already exists.`.
var detailKeyRe = regexp.MustCompile(`Key \(([^,)]+)`)

// MapDBError converts low-level database errors to AppErrors so callers
// and HTTP handlers never need to import pgx.
func MapDBError(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, resource+" operation timed out")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeCanceled, resource+" operation canceled")
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(err, ErrCodeNotFound, resource+" not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			appErr := Wrap(err, ErrCodeConflict, resource+" already exists")
			appErr.Field = violatedColumn(pgErr)
			return appErr
		case pgerrcode.ForeignKeyViolation:
			return Wrap(err, ErrCodeValidation, resource+" references a missing record")
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			appErr := Wrap(err, ErrCodeValidation, "invalid "+resource)
			appErr.Field = violatedColumn(pgErr)
			return appErr
		}
	}

	return Wrap(err, ErrCodeStore, resource+" operation failed")
}

// violatedColumn extracts the offending column name from a PgError,
// preferring ColumnName, then the Detail line, then the constraint name.
func violatedColumn(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := detailKeyRe.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	// Constraint names follow <table>_<column>_key convention.
	name := pgErr.ConstraintName
	if name == "" {
		return ""
	}
	if pgErr.TableName != "" {
		name = strings.TrimPrefix(name, pgErr.TableName+"_")
	}
	return strings.TrimSuffix(name, "_key")
}
