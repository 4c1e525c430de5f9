package dbfacade

import "context"

// connKey is the context key a *Connection travels under. There is no
// task-local storage in Go, so the active connection is carried in the
// context.Context itself -- a child goroutine inherits its parent's
// in-progress connection/transaction simply because it was handed the
// same ctx value, which is exactly the inheritance a caller expects.
type connKey struct{}

func withConnection(ctx context.Context, conn *Connection) context.Context {
	return context.WithValue(ctx, connKey{}, conn)
}

func connectionFromContext(ctx context.Context) (*Connection, bool) {
	conn, ok := ctx.Value(connKey{}).(*Connection)
	return conn, ok
}
