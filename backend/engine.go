package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rfberaldo/dbfacade/internal/stmtcache"
	"github.com/rfberaldo/dbfacade/query"
	"github.com/rfberaldo/dbfacade/record"
)

// querier is satisfied by [sql.DB], [sql.Tx] or [sql.Conn].
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// engine holds the state shared by every operation run against a single
// dedicated connection: the dialect it compiles queries for and its
// prepared-statement cache.
type engine struct {
	dialect         *Dialect
	structTag       string
	fieldNameMapper func(string) string
	stmtCache       *stmtcache.StmtCache
}

func newEngine(d *Dialect, structTag string, fieldNameMapper func(string) string, stmtCacheCapacity int) *engine {
	e := &engine{dialect: d, structTag: structTag, fieldNameMapper: fieldNameMapper}
	if stmtCacheCapacity > 0 {
		e.stmtCache = stmtcache.New(stmtCacheCapacity)
	}
	return e
}

func (e *engine) compile(queryStr string, args []any) (string, []any, error) {
	return query.Compile(e.dialect.Bind, e.structTag, e.fieldNameMapper, queryStr, args, e.dialect.Processors.Snapshot())
}

func (e *engine) queryRows(ctx context.Context, q querier, queryStr string, args ...any) (*sql.Rows, error) {
	compiledQuery, compiledArgs, err := e.compile(queryStr, args)
	if err != nil {
		return nil, err
	}

	if e.stmtCache == nil || len(compiledArgs) == 0 {
		return q.QueryContext(ctx, compiledQuery, compiledArgs...)
	}

	stmt, err := e.loadOrPrepare(ctx, q, compiledQuery)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, compiledArgs...)
}

func (e *engine) exec(ctx context.Context, q querier, queryStr string, args ...any) (sql.Result, error) {
	compiledQuery, compiledArgs, err := e.compile(queryStr, args)
	if err != nil {
		return nil, err
	}

	if e.stmtCache == nil || len(compiledArgs) == 0 {
		return q.ExecContext(ctx, compiledQuery, compiledArgs...)
	}

	stmt, err := e.loadOrPrepare(ctx, q, compiledQuery)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, compiledArgs...)
}

func (e *engine) loadOrPrepare(ctx context.Context, q querier, queryStr string) (*sql.Stmt, error) {
	stmt, ok := e.stmtCache.Get(queryStr)
	if !ok {
		var err error
		stmt, err = q.PrepareContext(ctx, queryStr)
		if err != nil {
			return nil, fmt.Errorf("dbfacade: preparing statement: %w", err)
		}
		e.stmtCache.Put(queryStr, stmt)
	}
	return stmt.(*sql.Stmt), nil
}

func (e *engine) closeStmts() {
	if e.stmtCache != nil {
		e.stmtCache.Clear()
	}
}

// scanRecords drains rows into Records. Unlike a struct destination scan,
// duplicate column names are accepted -- Record keeps every value
// positionally and only resolves name lookups to the first occurrence.
func scanRecords(rows *sql.Rows) ([]*record.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dbfacade: reading columns: %w", err)
	}

	var out []*record.Record
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("dbfacade: scanning row: %w", err)
		}

		out = append(out, record.New(columns, nil, values))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dbfacade: iterating rows: %w", err)
	}

	return out, nil
}
