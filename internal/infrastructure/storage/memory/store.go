// Package memory provides a transactional in-memory implementation of every
// repository. It backs tests and STORAGE=memory deployments.
//
// A transaction holds the store lock for its whole duration and works on the
// live state; on error the state taken at the start is restored. Entities are
// copied on every read and write so callers never share memory with the store.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"khaata/internal/core/id"
	"khaata/internal/core/tx"
	"khaata/internal/domain"
	"khaata/internal/domain/audit"
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/catalogs/unit"
	"khaata/internal/domain/documents/khaata"
	"khaata/internal/domain/inventory"
)

type state struct {
	categories     map[id.ID]category.Category
	units          map[id.ID]unit.Unit
	products       map[id.ID]product.Product
	counterparties map[id.ID]counterparty.Counterparty
	inventory      map[id.ID]inventory.Record
	documents      map[string]map[id.ID]khaata.Record
	sequences      map[string]int64
	audit          []audit.Entry
}

func newState() *state {
	return &state{
		categories:     map[id.ID]category.Category{},
		units:          map[id.ID]unit.Unit{},
		products:       map[id.ID]product.Product{},
		counterparties: map[id.ID]counterparty.Counterparty{},
		inventory:      map[id.ID]inventory.Record{},
		documents:      map[string]map[id.ID]khaata.Record{},
		sequences:      map[string]int64{},
	}
}

// clone copies the maps. Stored values are never mutated in place, so sharing
// them between the copy and the live state is safe.
func (s *state) clone() *state {
	docs := make(map[string]map[id.ID]khaata.Record, len(s.documents))
	for kind, m := range s.documents {
		docs[kind] = maps.Clone(m)
	}
	return &state{
		categories:     maps.Clone(s.categories),
		units:          maps.Clone(s.units),
		products:       maps.Clone(s.products),
		counterparties: maps.Clone(s.counterparties),
		inventory:      maps.Clone(s.inventory),
		documents:      docs,
		sequences:      maps.Clone(s.sequences),
		audit:          slices.Clone(s.audit),
	}
}

func (s *state) docs(kind string) map[id.ID]khaata.Record {
	m, ok := s.documents[kind]
	if !ok {
		m = map[id.ID]khaata.Record{}
		s.documents[kind] = m
	}
	return m
}

// Store is the in-memory database.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

type txKey struct{ store *Store }

func (s *Store) inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{s}).(bool)
	return ok
}

// RunInTransaction implements tx.Manager. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	txCtx, hooks := tx.WithCommitHooks(context.WithValue(ctx, txKey{s}, true))

	err := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		saved := s.state.clone()
		if err := fn(txCtx); err != nil {
			s.state = saved
			return err
		}
		return nil
	}()
	if err != nil {
		return err
	}

	hooks.Run(ctx)
	return nil
}

// view runs fn against the state, taking the lock unless ctx is inside a transaction.
func (s *Store) view(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// AuditEntries returns the recorded audit entries, oldest first.
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.audit)
}

// --- listing helpers ---

func sortByCreated[T any](items []T, orderBy string, at func(T) time.Time, key func(T) id.ID) {
	desc := strings.HasPrefix(orderBy, "-")
	slices.SortFunc(items, func(a, b T) int {
		c := at(a).Compare(at(b))
		if c == 0 {
			c = strings.Compare(key(a).String(), key(b).String())
		}
		if desc {
			return -c
		}
		return c
	})
}

func page[T any](items []T, f domain.ListFilter) domain.ListResult[T] {
	f.Normalize()
	total := len(items)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	return domain.ListResult[T]{
		Items:      items[start:end],
		TotalCount: int64(total),
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
}

func matchesSearch(value, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(search)))
}
