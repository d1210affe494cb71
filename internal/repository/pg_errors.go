package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const pgInvalidTextRepresentation = "22P02"

// notFoundOnBadID reports malformed identifiers as missing rows. Postgres
// rejects non-uuid text bound to a uuid column before it looks at any row.
func notFoundOnBadID(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgInvalidTextRepresentation {
		return sql.ErrNoRows
	}
	return err
}
