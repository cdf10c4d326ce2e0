// Package pgutil holds helpers shared by the Postgres repositories.
package pgutil

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"storefront/internal/domain"
)

const (
	codeUniqueViolation   = "23505"
	codeInvalidTextRepr   = "22P02"
	codeForeignKeyViolate = "23503"
)

// Translate maps driver errors onto domain sentinels. Malformed ids are
// reported as not found since no row could match them.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return domain.ErrAlreadyExists
		case codeInvalidTextRepr, codeForeignKeyViolate:
			return domain.ErrNotFound
		}
	}
	return err
}

// IsUniqueViolation reports whether err is a unique violation on the named
// constraint or index.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraint
}
