package dbfacade

import (
	"context"
	"fmt"
	"sync"

	"github.com/rfberaldo/dbfacade/backend"
)

// Transaction is one frame of a logical transaction: the root
// BEGIN/COMMIT/ROLLBACK, or a nested SAVEPOINT/RELEASE/ROLLBACK TO. It
// must end with exactly one call to Commit or Rollback, and only while
// it is the top frame on its Connection's stack.
type Transaction struct {
	conn *Connection
	back *backend.Transaction

	mu   sync.Mutex
	done bool
}

// Commit ends this frame successfully: COMMIT for the root frame,
// RELEASE SAVEPOINT for a nested one.
func (tx *Transaction) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		panic("dbfacade: transaction already committed or rolled back")
	}

	tx.conn.popTx(tx)
	tx.done = true

	return tx.back.Commit(ctx)
}

// Rollback aborts this frame: ROLLBACK for the root frame, ROLLBACK TO
// SAVEPOINT for a nested one.
func (tx *Transaction) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		panic("dbfacade: transaction already committed or rolled back")
	}

	tx.conn.popTx(tx)
	tx.done = true

	return tx.back.Rollback(ctx)
}

// Decorate returns a function that opens a fresh transaction frame on
// every call: fn's error rolls back, success commits. This is the
// decorator-form equivalent of Connection.Transaction, useful when the
// same operation needs to run inside its own transaction from multiple
// call sites.
func (tx *Transaction) Decorate(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		conn, ok := connectionFromContext(ctx)
		if !ok {
			return fmt.Errorf("dbfacade: decorated function requires a connection in context")
		}
		return conn.Transaction(ctx, fn)
	}
}
