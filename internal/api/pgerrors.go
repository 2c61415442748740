package api

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vesmirov/fundhub/internal/types"
)

// PGPool is the pool subset the repositories depend on. Satisfied by
// *pgxpool.Pool in production and by pgxmock pools in tests.
type PGPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapConstraintError translates Postgres unique violations into
// client-visible validation errors. Cross-request races on unique fields are
// resolved by the storage layer, so conflicts surface here rather than from
// an in-memory check. The constraints map translates constraint names to
// field names; unmapped constraints fall back to a generic message.
func MapConstraintError(err error, constraints map[string]string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}

	ve := types.NewValidationError()
	if field, ok := constraints[pgErr.ConstraintName]; ok {
		ve.Add(field, "already exists")
	} else {
		ve.Add("resource", "already exists")
	}
	return ve
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key
// violation. Fires both when a write references a missing row and when a
// RESTRICTed parent is deleted while referenced; callers know which side
// they are on and shape the validation message accordingly.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// ForeignKeyConstraint returns the violated constraint name when err is a
// Postgres foreign key violation, so callers referencing more than one
// parent table can tell which reference failed.
func ForeignKeyConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
