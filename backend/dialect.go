package backend

import (
	"github.com/rfberaldo/dbfacade/query"
)

// TxCommands holds the exact SQL text a dialect expects for transaction
// and nested-savepoint control. Kept as plain format strings rather than
// a single normalized code path because dialects genuinely disagree here
// -- MSSQL most of all, see mssqlTx's doc comment.
type TxCommands struct {
	Begin    string
	Commit   string
	Rollback string

	// Savepoint/Release/RollbackTo each take one %s, the savepoint name.
	Savepoint   string
	Release     string
	RollbackTo  string
	MaxNameSize int // 0 means unbounded
}

// Dialect describes everything about a SQL backend that the facade and
// query compiler need beyond a generic *sql.DB: its placeholder style,
// argument conversions, and transaction-control vocabulary.
type Dialect struct {
	Name       string
	DriverName string
	Bind       query.Bind
	TxCommands TxCommands
	Processors *query.BindProcessors

	// ReturningResult is true for dialects where Execute can recover a
	// server-generated value via a RETURNING clause instead of LastInsertId.
	ReturningResult bool
}

var (
	postgresTx = TxCommands{
		Begin:      "BEGIN",
		Commit:     "COMMIT",
		Rollback:   "ROLLBACK",
		Savepoint:  "SAVEPOINT %s",
		Release:    "RELEASE SAVEPOINT %s",
		RollbackTo: "ROLLBACK TO SAVEPOINT %s",
	}

	mysqlTx = TxCommands{
		Begin:      "START TRANSACTION",
		Commit:     "COMMIT",
		Rollback:   "ROLLBACK",
		Savepoint:  "SAVEPOINT %s",
		Release:    "RELEASE SAVEPOINT %s",
		RollbackTo: "ROLLBACK TO SAVEPOINT %s",
	}

	sqliteTx = TxCommands{
		Begin:      "BEGIN",
		Commit:     "COMMIT",
		Rollback:   "ROLLBACK",
		Savepoint:  "SAVEPOINT %s",
		Release:    "RELEASE %s",
		RollbackTo: "ROLLBACK TO %s",
	}

	// mssqlTx documents a quirk that looks wrong but isn't: rolling back
	// the outermost transaction still requires a matching BEGIN/ROLLBACK
	// pair, unlike every other dialect here. Kept byte-for-byte rather than
	// "fixed" -- changing it changes observable transaction behavior.
	mssqlTx = TxCommands{
		Begin:       "BEGIN TRANSACTION",
		Commit:      "COMMIT TRANSACTION",
		Rollback:    "BEGIN TRANSACTION; ROLLBACK TRANSACTION",
		Savepoint:   "SAVE TRANSACTION %s",
		Release:     "COMMIT TRANSACTION %s",
		RollbackTo:  "ROLLBACK TRANSACTION %s",
		MaxNameSize: 12,
	}
)
