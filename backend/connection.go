package backend

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/rfberaldo/dbfacade/record"
)

// Connection is a single dedicated physical connection to a backend
// database, the unit every facade Connection acquires and every
// Transaction runs on top of. It is backed by one *sql.Conn for its
// entire lifetime: nested SAVEPOINTs require every statement of a
// logical session to land on the same physical connection, not just the
// same pool.
type Connection struct {
	dialect *Dialect
	pool    *sql.DB
	conn    *sql.Conn
	engine  *engine
}

// Options configures how a Connection compiles and executes queries.
type Options struct {
	StructTag         string
	FieldNameMapper   func(string) string
	StmtCacheCapacity int
}

// Acquire checks out one physical connection from pool and binds it to
// dialect for the lifetime of the returned Connection. Release must be
// called to return the connection to the pool.
func Acquire(ctx context.Context, pool *sql.DB, dialect *Dialect, opts Options) (*Connection, error) {
	conn, err := pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("dbfacade: acquiring connection: %w", err)
	}

	if opts.StructTag == "" {
		opts.StructTag = "db"
	}
	if opts.StmtCacheCapacity == 0 {
		opts.StmtCacheCapacity = 16
	}

	return &Connection{
		dialect: dialect,
		pool:    pool,
		conn:    conn,
		engine:  newEngine(dialect, opts.StructTag, opts.FieldNameMapper, opts.StmtCacheCapacity),
	}, nil
}

// Release closes cached prepared statements and returns the physical
// connection to the pool.
func (c *Connection) Release() error {
	c.engine.closeStmts()
	return c.conn.Close()
}

// Raw exposes the underlying *sql.Conn, an escape hatch for callers that
// need driver-specific behavior this facade doesn't cover.
func (c *Connection) Raw() *sql.Conn { return c.conn }

// Dialect returns the dialect this connection was acquired for.
func (c *Connection) Dialect() *Dialect { return c.dialect }

// FetchAll runs query and returns every row as a Record.
func (c *Connection) FetchAll(ctx context.Context, queryStr string, args ...any) ([]*record.Record, error) {
	rows, err := c.engine.queryRows(ctx, c.conn, queryStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// QueryRows runs query and returns the raw *sql.Rows, an escape hatch for
// callers that want to scan directly into a destination (see
// dbfacade.Connection.FetchAllInto/FetchOneInto) instead of materializing
// Records.
func (c *Connection) QueryRows(ctx context.Context, queryStr string, args ...any) (*sql.Rows, error) {
	return c.engine.queryRows(ctx, c.conn, queryStr, args...)
}

// FetchOne runs query and returns the first row as a Record, or
// (nil, nil) if the query selects no rows.
func (c *Connection) FetchOne(ctx context.Context, queryStr string, args ...any) (*record.Record, error) {
	records, err := c.FetchAll(ctx, queryStr, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// FetchVal runs query and returns the value of the first column of the
// first row, or (nil, nil) if there are no rows or the column is NULL --
// callers that must tell the two apart should use FetchOne instead.
func (c *Connection) FetchVal(ctx context.Context, queryStr string, args ...any) (any, error) {
	rec, err := c.FetchOne(ctx, queryStr, args...)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return rec.Get(0)
}

// Execute runs query for its side effects. When the dialect can recover
// a server-generated value (PostgreSQL RETURNING), it is returned;
// otherwise Execute falls back to the result's LastInsertId, or 0 if
// neither is available.
func (c *Connection) Execute(ctx context.Context, queryStr string, args ...any) (int64, error) {
	if c.dialect.ReturningResult && containsReturning(queryStr) {
		rec, err := c.FetchOne(ctx, queryStr, args...)
		if err != nil {
			return 0, err
		}
		if rec == nil {
			return 0, nil
		}
		v, err := rec.Get(0)
		if err != nil {
			return 0, err
		}
		if id, ok := toInt64(v); ok {
			return id, nil
		}
		return 0, nil
	}

	result, err := c.engine.exec(ctx, c.conn, queryStr, args...)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, nil // driver doesn't support it, not a real error
	}
	return id, nil
}

// ExecuteMany runs query once per element of args, as separate
// statements against the same connection. Atomicity across the batch is
// not guaranteed by this method; wrap the call in a Transaction for that.
func (c *Connection) ExecuteMany(ctx context.Context, queryStr string, args []any) error {
	for _, arg := range args {
		if _, err := c.Execute(ctx, queryStr, arg); err != nil {
			return err
		}
	}
	return nil
}

// Iterate streams query's result set row by row without materializing
// the whole thing in memory. The underlying *sql.Rows is closed when the
// consumer stops ranging, whether by exhaustion, break, or error.
func (c *Connection) Iterate(ctx context.Context, queryStr string, args ...any) iter.Seq2[*record.Record, error] {
	return func(yield func(*record.Record, error) bool) {
		rows, err := c.engine.queryRows(ctx, c.conn, queryStr, args...)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			yield(nil, fmt.Errorf("dbfacade: reading columns: %w", err))
			return
		}

		for rows.Next() {
			values := make([]any, len(columns))
			ptrs := make([]any, len(columns))
			for i := range values {
				ptrs[i] = &values[i]
			}

			if err := rows.Scan(ptrs...); err != nil {
				yield(nil, fmt.Errorf("dbfacade: scanning row: %w", err))
				return
			}

			if !yield(record.New(columns, nil, values), nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("dbfacade: iterating rows: %w", err))
		}
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func containsReturning(queryStr string) bool {
	return strings.Contains(strings.ToUpper(queryStr), "RETURNING")
}
