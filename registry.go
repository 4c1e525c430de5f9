package dbfacade

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rfberaldo/dbfacade/backend"
)

// BackendFactory opens a connection pool for the parsed connection URL and
// returns the dialect to compile queries with, plus the native
// driver-specific DSN string it actually opened the pool with (needed to
// reopen the same target through [sqlogger] later). Registered per URL
// scheme. It receives the parsed URL rather than the raw dsn string
// because not every driver's native DSN grammar is itself a URL
// (go-sql-driver/mysql's "user:pass@tcp(host:port)/db" most of all).
type BackendFactory func(u *URL) (*sql.DB, *backend.Dialect, string, error)

type registryEntry struct {
	dialectName string
	factory     BackendFactory
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registryEntry{}
)

// RegisterBackend associates scheme (the part of a database URL before
// "://") with factory. Re-registering a scheme replaces the previous
// factory.
func RegisterBackend(scheme, dialectName string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = registryEntry{dialectName: dialectName, factory: factory}
}

func dialectByScheme(scheme string) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[scheme]
	return e.dialectName, ok
}

func factoryByScheme(scheme string) (BackendFactory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[scheme]
	if !ok {
		return nil, fmt.Errorf("dbfacade: unregistered database scheme: %q", scheme)
	}
	return e.factory, nil
}

func init() {
	// pgx's stdlib driver and go-mssqldb both accept the connection URL
	// verbatim; go-sql-driver/mysql and mattn/go-sqlite3 use their own
	// native DSN grammars instead, built from the parsed URL below.
	RegisterBackend("postgresql", backend.Postgres.Name, func(u *URL) (*sql.DB, *backend.Dialect, string, error) {
		dsn := u.String()
		db, err := backend.OpenPostgres(dsn)
		return db, backend.Postgres, dsn, err
	})
	RegisterBackend("postgres", backend.Postgres.Name, func(u *URL) (*sql.DB, *backend.Dialect, string, error) {
		dsn := u.String()
		db, err := backend.OpenPostgres(dsn)
		return db, backend.Postgres, dsn, err
	})

	RegisterBackend("mysql", backend.MySQL.Name, func(u *URL) (*sql.DB, *backend.Dialect, string, error) {
		dsn := mysqlDSN(u)
		db, err := backend.OpenMySQL(dsn)
		return db, backend.MySQL, dsn, err
	})

	RegisterBackend("sqlite", backend.SQLite.Name, func(u *URL) (*sql.DB, *backend.Dialect, string, error) {
		dsn := sqliteDSN(u)
		db, err := backend.OpenSQLite(dsn)
		return db, backend.SQLite, dsn, err
	})

	RegisterBackend("sqlserver", backend.MSSQL.Name, func(u *URL) (*sql.DB, *backend.Dialect, string, error) {
		dsn := u.String()
		db, err := backend.OpenMSSQL(dsn)
		return db, backend.MSSQL, dsn, err
	})
	RegisterBackend("mssql", backend.MSSQL.Name, func(u *URL) (*sql.DB, *backend.Dialect, string, error) {
		dsn := u.String()
		db, err := backend.OpenMSSQL(dsn)
		return db, backend.MSSQL, dsn, err
	})
}
