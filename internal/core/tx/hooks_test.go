package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hookedManager commits by running the collected hooks, like the storage managers do.
var hookedManager = ManagerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, hooks := WithCommitHooks(ctx)
	if err := fn(txCtx); err != nil {
		return err
	}
	hooks.Run(ctx)
	return nil
})

func TestAfterCommitOutsideTransactionRunsNow(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func(context.Context) { ran = true })
	assert.True(t, ran)
	assert.False(t, InTransaction(context.Background()))
}

func TestAfterCommitWaitsForCommit(t *testing.T) {
	var order []string
	err := hookedManager.RunInTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		AfterCommit(ctx, func(context.Context) { order = append(order, "first") })
		AfterCommit(ctx, func(context.Context) { order = append(order, "second") })
		order = append(order, "body")
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"body", "first", "second"}, order)
}

func TestAfterCommitDroppedOnRollback(t *testing.T) {
	ran := false
	err := hookedManager.RunInTransaction(context.Background(), func(ctx context.Context) error {
		AfterCommit(ctx, func(context.Context) { ran = true })
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.False(t, ran)
}
