package backend

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rfberaldo/dbfacade/query"
)

// SQLite is the dialect for SQLite, driven through mattn/go-sqlite3.
var SQLite = func() *Dialect {
	return &Dialect{
		Name:       "sqlite",
		DriverName: "sqlite3",
		Bind:       query.BindQuestion,
		TxCommands: sqliteTx,
		Processors: query.NewBindProcessors(),
	}
}()

// OpenSQLite opens a pool for dsn using mattn/go-sqlite3. A dedicated,
// single-connection pool is strongly recommended for file-based SQLite
// since the driver otherwise serializes writers behind SQLITE_BUSY.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open(SQLite.DriverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
