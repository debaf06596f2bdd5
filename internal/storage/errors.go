package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate marks a uniqueness conflict on insert. Two overlapping sync
// runs racing to create the same remote primary key is an expected
// condition; callers skip the record instead of failing the run.
var ErrDuplicate = errors.New("duplicate primary key")

// uniqueViolation is the Postgres error code for unique constraint breaks.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
