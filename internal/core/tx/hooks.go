package tx

import (
	"context"
	"sync"
)

// CommitHooks collects callbacks that must only run once the outermost
// transaction has committed. Manager implementations create one per
// top-level transaction with WithCommitHooks and call Run after commit.
type CommitHooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

type hooksKey struct{}

// WithCommitHooks starts a hook list for a new top-level transaction.
func WithCommitHooks(ctx context.Context) (context.Context, *CommitHooks) {
	h := &CommitHooks{}
	return context.WithValue(ctx, hooksKey{}, h), h
}

// InTransaction reports whether ctx belongs to a transaction that collects commit hooks.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(hooksKey{}).(*CommitHooks)
	return ok
}

// AfterCommit runs fn after the transaction in ctx commits. Outside a
// transaction fn runs immediately. A rolled back transaction drops fn.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	h, ok := ctx.Value(hooksKey{}).(*CommitHooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Run calls the collected hooks in registration order with ctx.
func (h *CommitHooks) Run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}
