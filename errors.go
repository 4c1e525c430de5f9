package dbfacade

import (
	"database/sql"
	"errors"
)

// IsNotFound reports whether err represents "no rows returned", the
// condition FetchOne/FetchVal resolve to (nil, nil) rather than an error,
// but that lower-level callers going straight through a Connection's
// Raw() *sql.Conn may still observe as sql.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
