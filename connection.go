package dbfacade

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/rfberaldo/dbfacade/backend"
	"github.com/rfberaldo/dbfacade/record"
)

// Connection is a logical, reference-counted handle onto one dedicated
// backend.Connection. Multiple calls into the same facade scope share a
// Connection; the underlying physical connection is only released once
// every enter has a matching exit.
type Connection struct {
	db   *Database
	back *backend.Connection

	mu    sync.Mutex
	count int

	stackMu sync.Mutex
	stack   []*Transaction
}

// enter increments the reference count, acquiring the physical
// connection on the first call.
func (c *Connection) enter(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		back, err := backend.Acquire(ctx, c.db.pool, c.db.dialect, backend.Options{
			StructTag:         c.db.opts.StructTag,
			FieldNameMapper:   c.db.opts.FieldNameTransformer,
			StmtCacheCapacity: c.db.opts.StmtCacheCapacity,
		})
		if err != nil {
			return err
		}
		c.back = back
	}

	c.count++
	return nil
}

// exit decrements the reference count, releasing the physical connection
// once it reaches zero. The counter never goes below zero.
func (c *Connection) exit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		return nil
	}

	c.count--
	if c.count > 0 {
		return nil
	}

	back := c.back
	c.back = nil
	return back.Release()
}

// RawConn exposes the underlying *sql.Conn, an escape hatch for
// driver-specific operations this facade doesn't cover.
func (c *Connection) RawConn() any { return c.back.Raw() }

func (c *Connection) pushTx(tx *Transaction) {
	c.stackMu.Lock()
	defer c.stackMu.Unlock()
	c.stack = append(c.stack, tx)
}

func (c *Connection) popTx(tx *Transaction) {
	c.stackMu.Lock()
	defer c.stackMu.Unlock()

	if len(c.stack) == 0 || c.stack[len(c.stack)-1] != tx {
		panic("dbfacade: transaction commit/rollback out of order")
	}
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Connection) depth() int {
	c.stackMu.Lock()
	defer c.stackMu.Unlock()
	return len(c.stack)
}

// rollbackAll unwinds every frame still open on this connection's
// transaction stack, innermost first. Used to unconditionally discard the
// work done under [Database.ForceRollback].
func (c *Connection) rollbackAll(ctx context.Context) error {
	for {
		c.stackMu.Lock()
		if len(c.stack) == 0 {
			c.stackMu.Unlock()
			return nil
		}
		tx := c.stack[len(c.stack)-1]
		c.stackMu.Unlock()

		if err := tx.Rollback(ctx); err != nil {
			return err
		}
	}
}

// FetchAll runs query and returns every row as a *record.Record.
func (c *Connection) FetchAll(ctx context.Context, query string, args ...any) ([]*record.Record, error) {
	return c.back.FetchAll(ctx, query, args...)
}

// FetchOne runs query and returns its first row, or (nil, nil) if the
// query selects no rows.
func (c *Connection) FetchOne(ctx context.Context, query string, args ...any) (*record.Record, error) {
	return c.back.FetchOne(ctx, query, args...)
}

// FetchVal runs query and returns the value of the first column of the
// first row, or (nil, nil) if there are no rows or the value is NULL.
func (c *Connection) FetchVal(ctx context.Context, query string, args ...any) (any, error) {
	return c.back.FetchVal(ctx, query, args...)
}

// Execute runs query for its side effects and returns a
// server/driver-generated id when available.
func (c *Connection) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	return c.back.Execute(ctx, query, args...)
}

// ExecuteMany runs query once per element of args.
func (c *Connection) ExecuteMany(ctx context.Context, query string, args []any) error {
	return c.back.ExecuteMany(ctx, query, args)
}

// Iterate streams query's result set row by row.
func (c *Connection) Iterate(ctx context.Context, query string, args ...any) iter.Seq2[*record.Record, error] {
	return c.back.Iterate(ctx, query, args...)
}

// FetchAllInto runs query and scans every row into dest, a pointer to a
// slice of struct, map or primitive. It's an alternative to FetchAll for
// callers that want to bind straight into their own types instead of
// working with *record.Record.
func (c *Connection) FetchAllInto(ctx context.Context, dest any, queryStr string, args ...any) error {
	rows, err := c.back.QueryRows(ctx, queryStr, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	api := newScanAPI(c.db.opts.StructTag, c.db.opts.FieldNameTransformer, c.db.opts.IgnoreMissingFields)
	return scanAll(api, rows, dest)
}

// FetchOneInto is like FetchAllInto, but expects exactly one row and scans
// it into dest, a pointer to a struct, map or primitive. It returns an
// error satisfying IsNotFound when the query selects no rows.
func (c *Connection) FetchOneInto(ctx context.Context, dest any, queryStr string, args ...any) error {
	rows, err := c.back.QueryRows(ctx, queryStr, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	api := newScanAPI(c.db.opts.StructTag, c.db.opts.FieldNameTransformer, c.db.opts.IgnoreMissingFields)
	return scanOne(api, rows, dest)
}

// Begin starts a new transaction frame on this connection: the root
// BEGIN if none is in progress, otherwise a nested SAVEPOINT. The
// returned context carries the connection forward for callers that want
// to pass it on to child operations/goroutines explicitly.
func (c *Connection) Begin(ctx context.Context) (*Transaction, context.Context, error) {
	nested := c.depth() > 0

	back, err := backend.Start(ctx, c.back, nested)
	if err != nil {
		return nil, ctx, err
	}

	tx := &Transaction{conn: c, back: back}
	c.pushTx(tx)

	return tx, withConnection(ctx, c), nil
}

// Transaction runs fn inside a new transaction frame: fn's error rolls
// back, fn's success commits. This is the scoped-block form; see Begin
// for the explicit commit/rollback form and Transaction.Decorate for the
// reusable-function form.
func (c *Connection) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, txCtx, err := c.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(txCtx)
}
