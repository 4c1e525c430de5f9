package dbfacade

import (
	"context"
	"fmt"
	"testing"

	"github.com/rfberaldo/dbfacade/backend"
	"github.com/rfberaldo/dbfacade/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqlite in-memory gives fast end-to-end coverage without a running
// external database, exercising Connect/Connection/Transaction together.
func newSQLiteDB(t *testing.T) *Database {
	t.Helper()
	db, err := Connect(context.Background(), "sqlite://memory", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Disconnect(context.Background()) })
	return db
}

func TestDatabase_BasicCRUD(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	_, err := db.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	_, err = db.Execute(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", 1, "Alice")
	require.NoError(t, err)

	rec, err := db.FetchOne(ctx, "SELECT id, name FROM users WHERE id = ?", 1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	name, err := rec.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestDatabase_RollbackIsolation(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	_, err := db.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	err = db.Transaction(ctx, func(ctx context.Context) error {
		_, err := db.Execute(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", 1, "Alice")
		require.NoError(t, err)
		return fmt.Errorf("force rollback")
	})
	assert.Error(t, err)

	val, err := db.FetchVal(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.EqualValues(t, 0, toCount(val))
}

func TestDatabase_NestedSavepointRollback(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	_, err := db.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	err = db.Transaction(ctx, func(ctx context.Context) error {
		_, err := db.Execute(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", 1, "Alice")
		require.NoError(t, err)

		err = db.Transaction(ctx, func(ctx context.Context) error {
			_, err := db.Execute(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", 2, "Bob")
			require.NoError(t, err)
			return fmt.Errorf("nested rollback")
		})
		assert.Error(t, err)

		return nil
	})
	require.NoError(t, err)

	val, err := db.FetchVal(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.EqualValues(t, 1, toCount(val), "only the outer insert survives")
}

func TestDatabase_ContextInheritance(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	_, err := db.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	err = db.Transaction(ctx, func(txCtx context.Context) error {
		_, err := db.Execute(txCtx, "INSERT INTO users (id, name) VALUES (?, ?)", 1, "Alice")
		require.NoError(t, err)

		inherited := func(ctx context.Context) error {
			rec, err := db.FetchOne(ctx, "SELECT id, name FROM users WHERE id = ?", 1)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("expected row to be visible within the same transaction")
			}
			return nil
		}

		return inherited(txCtx)
	})
	require.NoError(t, err)
}

func TestDatabase_ForceRollback_SiblingIsolation(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	_, err := db.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	err = db.ForceRollback(ctx, func(ctx context.Context) error {
		_, err := db.Execute(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", 1, "Alice")
		return err
	})
	require.NoError(t, err)

	val, err := db.FetchVal(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.EqualValues(t, 0, toCount(val), "force-rollback leaves no trace for a sibling call")
}

func TestDatabase_PlaceholderExpansion_InClause(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	_, err := db.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	err = db.ExecuteMany(ctx, "INSERT INTO users (id, name) VALUES (:id, :name)", []any{
		map[string]any{"id": 1, "name": "Alice"},
		map[string]any{"id": 2, "name": "Bob"},
		map[string]any{"id": 3, "name": "Carol"},
	})
	require.NoError(t, err)

	recs, err := db.FetchAll(ctx, "SELECT id FROM users WHERE id IN (?)", []int{1, 3})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func toCount(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return -1
	}
}

// TestDatabase_MultiDialect_BasicQuery wires internal/testutil's DB-gated
// harness into a real test: it runs against whatever of MySQL/PostgreSQL is
// reachable via MYSQL_DSN/POSTGRES_DSN, skipping the rest (and failing when
// neither is reachable), matching the teacher's own run(t, fn) pattern.
func TestDatabase_MultiDialect_BasicQuery(t *testing.T) {
	testutil.RunConn(t, func(t *testing.T, conn *testutil.Conn) {
		var dialect *backend.Dialect
		switch conn.Name {
		case "MySQL":
			dialect = backend.MySQL
		case "PostgreSQL":
			dialect = backend.Postgres
		}

		db := &Database{pool: conn.DB, dialect: dialect, opts: Options{}.withDefaults()}
		ctx := context.Background()

		table := testutil.NewTableHelper(t)
		table.Cleanup(conn.DB)

		_, err := db.Execute(ctx, table.FmtRebind(conn.Bind, "CREATE TABLE %s (id INT PRIMARY KEY, name VARCHAR(50))"))
		require.NoError(t, err)

		_, err = db.Execute(ctx, table.FmtRebind(conn.Bind, "INSERT INTO %s (id, name) VALUES (?, ?)"), 1, "Alice")
		require.NoError(t, err)

		rec, err := db.FetchOne(ctx, table.FmtRebind(conn.Bind, "SELECT id, name FROM %s WHERE id = ?"), 1)
		require.NoError(t, err)
		require.NotNil(t, rec)
		name, err := rec.Get("name")
		require.NoError(t, err)
		assert.Equal(t, "Alice", name)
	})
}
