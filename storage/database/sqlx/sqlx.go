// Package sqlxrepos implements the core repositories on top of jmoiron/sqlx.
// Queries are written with `?` placeholders and rebound to the driver's bindvar.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

// trapNoRowsErr maps sql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return core.NewStorageError(err, op)
}

// checkAffected returns notFound when res did not touch any row.
func checkAffected(res sql.Result, notFound error, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageError(err, op)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// orderBy builds an ORDER BY clause out of the orderings whose field is a key of columns.
func orderBy(ordering []core.DBOrdering, columns map[string]string, fallback string) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := columns[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
