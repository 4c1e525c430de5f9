package backend

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rfberaldo/dbfacade/query"
)

// Postgres is the dialect for PostgreSQL, driven through pgx's
// database/sql-compatible stdlib adapter.
var Postgres = func() *Dialect {
	processors := query.NewBindProcessors()

	return &Dialect{
		Name:            "postgres",
		DriverName:      "pgx",
		Bind:            query.BindDollar,
		TxCommands:      postgresTx,
		Processors:      processors,
		ReturningResult: true,
	}
}()

// OpenPostgres opens a pool for dsn using the pgx stdlib driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	return sql.Open(Postgres.DriverName, dsn)
}

func init() {
	// normalize time.Time to UTC the way asyncpg does implicitly, so
	// timestamps round-trip regardless of the server's session timezone.
	Postgres.Processors.Register(timeType, func(v any) (any, error) {
		return v.(time.Time).UTC(), nil
	})
}
