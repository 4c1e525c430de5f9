package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Transaction drives BEGIN/COMMIT/ROLLBACK for the root frame of a
// logical transaction, and SAVEPOINT/RELEASE/ROLLBACK TO for nested
// frames, against a single Connection's dedicated *sql.Conn.
type Transaction struct {
	conn     *Connection
	name     string // empty for the root frame
	isNested bool
}

// Start begins a new transaction frame. With nested false it opens the
// root transaction; with nested true it opens a named savepoint inside
// the transaction already open on conn.
func Start(ctx context.Context, conn *Connection, nested bool) (*Transaction, error) {
	tx := &Transaction{conn: conn, isNested: nested}

	cmds := conn.dialect.TxCommands
	if !nested {
		_, err := conn.engine.exec(ctx, conn.conn, cmds.Begin)
		if err != nil {
			return nil, fmt.Errorf("dbfacade: starting transaction: %w", err)
		}
		return tx, nil
	}

	tx.name = savepointName(cmds.MaxNameSize)
	stmt := fmt.Sprintf(cmds.Savepoint, tx.name)
	if _, err := conn.engine.exec(ctx, conn.conn, stmt); err != nil {
		return nil, fmt.Errorf("dbfacade: creating savepoint: %w", err)
	}

	return tx, nil
}

// Commit commits the root transaction, or releases a nested savepoint.
func (tx *Transaction) Commit(ctx context.Context) error {
	cmds := tx.conn.dialect.TxCommands

	if !tx.isNested {
		_, err := tx.conn.engine.exec(ctx, tx.conn.conn, cmds.Commit)
		if err != nil {
			return fmt.Errorf("dbfacade: committing transaction: %w", err)
		}
		return nil
	}

	if cmds.Release == "" {
		return nil
	}

	stmt := fmt.Sprintf(cmds.Release, tx.name)
	if _, err := tx.conn.engine.exec(ctx, tx.conn.conn, stmt); err != nil {
		return fmt.Errorf("dbfacade: releasing savepoint: %w", err)
	}
	return nil
}

// Rollback rolls back the root transaction, or rolls back to a nested
// savepoint.
func (tx *Transaction) Rollback(ctx context.Context) error {
	cmds := tx.conn.dialect.TxCommands

	if !tx.isNested {
		_, err := tx.conn.engine.exec(ctx, tx.conn.conn, cmds.Rollback)
		if err != nil {
			return fmt.Errorf("dbfacade: rolling back transaction: %w", err)
		}
		return nil
	}

	stmt := fmt.Sprintf(cmds.RollbackTo, tx.name)
	if _, err := tx.conn.engine.exec(ctx, tx.conn.conn, stmt); err != nil {
		return fmt.Errorf("dbfacade: rolling back to savepoint: %w", err)
	}
	return nil
}

// savepointName generates a unique savepoint identifier. maxSize
// truncates it for dialects with short identifier limits (MSSQL savepoint
// names are significant only to their first 12 characters).
func savepointName(maxSize int) string {
	name := "SAVEPOINT_" + strings.ReplaceAll(uuid.NewString(), "-", "_")
	if maxSize > 0 && len(name) > maxSize {
		name = name[:maxSize]
	}
	return name
}
