package dbfacade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Decorate_RequiresConnectionInContext(t *testing.T) {
	tx := &Transaction{}
	decorated := tx.Decorate(func(ctx context.Context) error { return nil })

	err := decorated(context.Background())
	assert.ErrorContains(t, err, "requires a connection in context")
}

func TestTransaction_Commit_PanicsIfAlreadyDone(t *testing.T) {
	tx := &Transaction{done: true}

	assert.PanicsWithValue(t, "dbfacade: transaction already committed or rolled back", func() {
		tx.Commit(context.Background())
	})
}

func TestTransaction_Rollback_PanicsIfAlreadyDone(t *testing.T) {
	tx := &Transaction{done: true}

	assert.PanicsWithValue(t, "dbfacade: transaction already committed or rolled back", func() {
		tx.Rollback(context.Background())
	})
}
