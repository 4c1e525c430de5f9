package backend

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rfberaldo/dbfacade/query"
)

// MySQL is the dialect for MySQL and MariaDB, driven through
// go-sql-driver/mysql.
var MySQL = func() *Dialect {
	processors := query.NewBindProcessors()

	return &Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		Bind:       query.BindQuestion,
		TxCommands: mysqlTx,
		Processors: processors,
	}
}()

// OpenMySQL opens a pool for dsn using go-sql-driver/mysql.
func OpenMySQL(dsn string) (*sql.DB, error) {
	return sql.Open(MySQL.DriverName, dsn)
}

func init() {
	// go-sql-driver/mysql already truncates to DATETIME precision with
	// parseTime=true; this only guards callers that opted out of that DSN
	// flag and would otherwise get a driver-level type mismatch error.
	MySQL.Processors.Register(timeType, func(v any) (any, error) {
		return v.(time.Time).Truncate(time.Second), nil
	})
}
