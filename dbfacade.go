// Package dbfacade is a uniform, asynchronous-shaped facade over
// heterogeneous SQL backends (PostgreSQL, MySQL, SQLite, MSSQL). It wraps
// [database/sql] with named-parameter queries, IN-clause expansion,
// nested transactions and a driver-neutral Record result type, so callers
// don't special-case placeholder styles or savepoint syntax per backend.
package dbfacade

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/rfberaldo/dbfacade/backend"
	"github.com/rfberaldo/dbfacade/record"
	"github.com/rfberaldo/dbfacade/sqlogger"
)

// Options configures a [Database].
type Options struct {
	// StructTag is the reflection tag used to map struct fields to query
	// parameters and columns. Default is "db".
	StructTag string

	// FieldNameTransformer maps a struct field name to a column/parameter
	// name, used only when the struct tag is not found. Default is
	// SnakeCaseMapper.
	FieldNameTransformer func(string) string

	// IgnoreMissingFields makes destination scanning (FetchAllInto,
	// FetchOneInto) ignore missing struct fields rather than return an
	// error.
	IgnoreMissingFields bool

	// StmtCacheCapacity bounds the number of prepared statements cached
	// per physical connection. Default is 16; a negative value disables
	// the cache.
	StmtCacheCapacity int

	// Logger, if set, wraps the underlying driver to log every query,
	// transaction command and connection lifecycle event.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.StructTag == "" {
		o.StructTag = "db"
	}
	if o.StmtCacheCapacity == 0 {
		o.StmtCacheCapacity = 16
	}
	return o
}

// Database is the top-level handle: it owns the connection pool and the
// dialect resolved from the connection URL, and hands out [Connection]s
// scoped to a context.Context.
type Database struct {
	pool    *sql.DB
	dialect *backend.Dialect
	opts    Options

	mu               sync.Mutex
	forceRollback    bool
	globalConnection *Connection
}

// Connect opens a connection pool for dsn, a URL of the form
// "postgresql://...", "mysql://...", "sqlite://..." or
// "sqlserver://..."/"mssql://...", and verifies it with a ping.
//
// opts may be nil for defaults.
func Connect(ctx context.Context, dsn string, opts *Options) (*Database, error) {
	u, err := ParseURL(dsn)
	if err != nil {
		return nil, err
	}

	factory, err := factoryByScheme(u.Scheme)
	if err != nil {
		return nil, err
	}

	pool, dialect, nativeDSN, err := factory(u)
	if err != nil {
		return nil, fmt.Errorf("dbfacade: opening %s connection: %w", u.Dialect, err)
	}

	var o Options
	if opts != nil {
		o = *opts
	}
	o = o.withDefaults()

	if o.Logger != nil {
		driver := pool.Driver()
		pool.Close()
		pool = sqlogger.New(driver, nativeDSN, o.Logger, nil)
	}

	applyPoolOptions(pool, u)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dbfacade: pinging %s: %w", u.Dialect, err)
	}

	return &Database{pool: pool, dialect: dialect, opts: o}, nil
}

// Pool returns the underlying [sql.DB].
func (db *Database) Pool() *sql.DB { return db.pool }

// Dialect returns the backend dialect this database was connected with.
func (db *Database) Dialect() *backend.Dialect { return db.dialect }

// Ping verifies the connection pool is still reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.PingContext(ctx)
}

// Stats returns pool statistics, forwarded from [sql.DB.Stats].
func (db *Database) Stats() sql.DBStats { return db.pool.Stats() }

// Disconnect rolls back the hidden force-rollback transaction, if any,
// and closes the connection pool. Database is unusable afterwards.
func (db *Database) Disconnect(ctx context.Context) error {
	db.mu.Lock()
	global := db.globalConnection
	db.globalConnection = nil
	db.forceRollback = false
	db.mu.Unlock()

	if global != nil {
		if err := global.rollbackAll(ctx); err != nil {
			db.pool.Close()
			return err
		}
		if err := global.exit(); err != nil {
			db.pool.Close()
			return err
		}
	}

	return db.pool.Close()
}

// Connection resolves the [Connection] active for ctx: the one ctx already
// carries, if any -- which is how a child goroutine handed the same ctx
// value inherits its parent's in-progress connection and transactions --
// otherwise a freshly acquired one, returned together with a context that
// carries it for callers that want to pass it on explicitly. The caller is
// responsible for calling Connection.exit once it is done, unless it came
// from ctx (in which case whoever put it there owns its lifetime). While
// ForceRollback is active, it always returns the shared force-rollback
// connection instead, whose lifetime ForceRollback owns.
func (db *Database) Connection(ctx context.Context) (*Connection, context.Context, error) {
	db.mu.Lock()
	forceRollback := db.forceRollback
	global := db.globalConnection
	db.mu.Unlock()

	if forceRollback && global != nil {
		return global, withConnection(ctx, global), nil
	}

	if conn, ok := connectionFromContext(ctx); ok {
		return conn, ctx, nil
	}

	conn := &Connection{db: db}
	if err := conn.enter(ctx); err != nil {
		return nil, ctx, err
	}

	return conn, withConnection(ctx, conn), nil
}

// ForceRollback runs fn with a single dedicated connection and outer
// transaction shared by every facade call made through the context it's
// given, then unconditionally rolls that transaction back -- useful for
// integration tests that must leave no trace regardless of fn's outcome.
// Not reentrant: a second call made while one is active returns an error.
func (db *Database) ForceRollback(ctx context.Context, fn func(ctx context.Context) error) error {
	db.mu.Lock()
	if db.forceRollback {
		db.mu.Unlock()
		return fmt.Errorf("dbfacade: force-rollback mode already active")
	}

	conn := &Connection{db: db}
	if err := conn.enter(ctx); err != nil {
		db.mu.Unlock()
		return err
	}

	db.globalConnection = conn
	db.forceRollback = true
	db.mu.Unlock()

	defer func() {
		db.mu.Lock()
		db.forceRollback = false
		db.globalConnection = nil
		db.mu.Unlock()

		_ = conn.rollbackAll(ctx)
		_ = conn.exit()
	}()

	tx, txCtx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	fnErr := fn(txCtx)
	_ = tx.Rollback(ctx) // unconditional, per force-rollback semantics
	return fnErr
}

// acquireForOneShot resolves the connection a one-shot convenience method
// should use. It returns owned=true only when it acquired a brand new
// connection nobody else is responsible for releasing -- ctx already
// carrying one (inherited from a parent scope) or the force-rollback
// global connection are both left for their real owner to release.
func (db *Database) acquireForOneShot(ctx context.Context) (conn *Connection, outCtx context.Context, owned bool, err error) {
	if _, ok := connectionFromContext(ctx); ok {
		conn, outCtx, err = db.Connection(ctx)
		return conn, outCtx, false, err
	}

	db.mu.Lock()
	forceRollback := db.forceRollback
	db.mu.Unlock()

	conn, outCtx, err = db.Connection(ctx)
	return conn, outCtx, !forceRollback, err
}

// FetchAll is a one-shot convenience equivalent to resolving ctx's
// connection, calling FetchAll on it, and releasing it again.
func (db *Database) FetchAll(ctx context.Context, query string, args ...any) ([]*record.Record, error) {
	conn, ctx, owned, err := db.acquireForOneShot(ctx)
	if err != nil {
		return nil, err
	}
	if owned {
		defer conn.exit()
	}
	return conn.FetchAll(ctx, query, args...)
}

// FetchOne is the one-shot form of Connection.FetchOne.
func (db *Database) FetchOne(ctx context.Context, query string, args ...any) (*record.Record, error) {
	conn, ctx, owned, err := db.acquireForOneShot(ctx)
	if err != nil {
		return nil, err
	}
	if owned {
		defer conn.exit()
	}
	return conn.FetchOne(ctx, query, args...)
}

// FetchVal is the one-shot form of Connection.FetchVal.
func (db *Database) FetchVal(ctx context.Context, query string, args ...any) (any, error) {
	conn, ctx, owned, err := db.acquireForOneShot(ctx)
	if err != nil {
		return nil, err
	}
	if owned {
		defer conn.exit()
	}
	return conn.FetchVal(ctx, query, args...)
}

// Execute is the one-shot form of Connection.Execute.
func (db *Database) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	conn, ctx, owned, err := db.acquireForOneShot(ctx)
	if err != nil {
		return 0, err
	}
	if owned {
		defer conn.exit()
	}
	return conn.Execute(ctx, query, args...)
}

// ExecuteMany is the one-shot form of Connection.ExecuteMany.
func (db *Database) ExecuteMany(ctx context.Context, query string, args []any) error {
	conn, ctx, owned, err := db.acquireForOneShot(ctx)
	if err != nil {
		return err
	}
	if owned {
		defer conn.exit()
	}
	return conn.ExecuteMany(ctx, query, args)
}

// Transaction is the one-shot form of Connection.Transaction: it resolves
// ctx's connection, runs fn inside a new transaction frame, and releases
// the connection again once fn returns.
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	conn, ctx, owned, err := db.acquireForOneShot(ctx)
	if err != nil {
		return err
	}
	if owned {
		defer conn.exit()
	}
	return conn.Transaction(ctx, fn)
}

func applyPoolOptions(pool *sql.DB, u *URL) {
	if v := firstOption(u.Options, "max_size", "maxsize", "pool_max_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pool.SetMaxOpenConns(n)
		}
	}
	if v := firstOption(u.Options, "min_size", "minsize", "pool_min_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pool.SetMaxIdleConns(n)
		}
	}
	if v := u.Options["pool_recycle"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pool.SetConnMaxLifetime(time.Duration(n) * time.Second)
		}
	}

	// ssl and unix_socket are accepted as-is: every driver here already
	// reads them straight off the DSN query string it was opened with.
}

func firstOption(opts map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := opts[k]; ok {
			return v
		}
	}
	return ""
}
