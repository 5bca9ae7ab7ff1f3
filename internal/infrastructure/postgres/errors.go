package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// uniqueViolationColumn reports which of columns a unique violation refers to.
// The constraint name is checked first, then the "Key (col)=(...)" detail.
// ok is false when err is not a unique violation at all.
func uniqueViolationColumn(err error, columns ...string) (column string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return "", false
	}
	for _, c := range columns {
		if strings.Contains(pgErr.ConstraintName, c) {
			return c, true
		}
	}
	if i := strings.Index(pgErr.Detail, "Key ("); i >= 0 {
		key := pgErr.Detail[i:]
		if j := strings.Index(key, ")="); j >= 0 {
			key = key[:j]
		}
		for _, c := range columns {
			if strings.Contains(key, c) {
				return c, true
			}
		}
	}
	return "", true
}
