package backend

import (
	"database/sql"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/rfberaldo/dbfacade/query"
)

// MSSQL is the dialect for Microsoft SQL Server, driven through
// microsoft/go-mssqldb.
var MSSQL = func() *Dialect {
	return &Dialect{
		Name:       "mssql",
		DriverName: "sqlserver",
		Bind:       query.BindAt,
		TxCommands: mssqlTx,
		Processors: query.NewBindProcessors(),
	}
}()

// OpenMSSQL opens a pool for dsn using microsoft/go-mssqldb.
func OpenMSSQL(dsn string) (*sql.DB, error) {
	return sql.Open(MSSQL.DriverName, dsn)
}
