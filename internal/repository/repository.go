// Package repository owns the in-memory ledger collections. Every mutation is
// written through to a Store before it becomes visible, and subscribers are
// told about it afterwards.
package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"idledger/internal/core"
	"idledger/internal/log"
)

// Store persists whole collections. One call per affected collection per action.
type Store interface {
	SaveCategories(ctx context.Context, items []core.Category) error
	SaveRecords(ctx context.Context, items []core.Record) error
	SaveExpenses(ctx context.Context, items []core.Expense) error
}

type Op string

const (
	OpCreate           Op = "create"
	OpCreateBatch      Op = "create_batch"
	OpUpdate           Op = "update"
	OpBulkUpdate       Op = "bulk_update"
	OpToggleStatus     Op = "toggle_status"
	OpBulkToggleStatus Op = "bulk_toggle_status"
	OpDelete           Op = "delete"
	OpBulkDelete       Op = "bulk_delete"
)

// Change describes one committed mutation. IDs lists the entities that were
// actually affected, in collection order.
type Change struct {
	Collection core.Collection
	Op         Op
	IDs        []string
}

type Listener func(ctx context.Context, change Change)

type Option func(*Repository)

// WithClock overrides the clock used for ids and creation dates.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLocation sets the zone that decides the current calendar date.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

type Repository struct {
	mu         sync.RWMutex
	store      Store
	categories []core.Category
	records    []core.Record
	expenses   []core.Expense
	ids        idSource

	now    func() time.Time
	loc    *time.Location
	logger *log.Logger

	lmu       sync.Mutex
	listeners []*subscription
}

type subscription struct {
	fn Listener
}

// New returns a repository holding a copy of initial.
func New(store Store, initial core.Snapshot, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		now:    time.Now,
		loc:    time.UTC,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent(log.ComponentRepository)
	r.ids.now = r.now

	snap := initial.Clone()
	r.categories = nonNil(snap.Categories)
	r.records = nonNil(snap.Records)
	r.expenses = nonNil(snap.Expenses)
	for _, c := range r.categories {
		r.ids.observe(c.ID)
	}
	for _, rec := range r.records {
		r.ids.observe(rec.ID)
	}
	for _, e := range r.expenses {
		r.ids.observe(e.ID)
	}
	return r
}

// Snapshot returns copies of all three collections in insertion order.
func (r *Repository) Snapshot() core.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return core.Snapshot{
		Categories: slices.Clone(r.categories),
		Records:    slices.Clone(r.records),
		Expenses:   slices.Clone(r.expenses),
	}
}

func (r *Repository) Categories() []core.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.categories)
}

func (r *Repository) Records() []core.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records)
}

func (r *Repository) Expenses() []core.Expense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.expenses)
}

// Subscribe registers fn for every committed change and returns a func that
// removes it. Listeners run synchronously, in registration order, after the
// repository lock is released.
func (r *Repository) Subscribe(fn Listener) (unsubscribe func()) {
	s := &subscription{fn: fn}
	r.lmu.Lock()
	r.listeners = append(r.listeners, s)
	r.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.lmu.Lock()
			defer r.lmu.Unlock()
			r.listeners = slices.DeleteFunc(r.listeners, func(x *subscription) bool { return x == s })
		})
	}
}

func (r *Repository) notify(ctx context.Context, change Change) {
	r.lmu.Lock()
	listeners := slices.Clone(r.listeners)
	r.lmu.Unlock()
	for _, s := range listeners {
		s.fn(ctx, change)
	}
}

func (r *Repository) today() string {
	return core.DateOf(r.now(), r.loc)
}

// collection binds one of the repository's slices to its Store save func.
type collection[T any] struct {
	name  core.Collection
	items *[]T
	save  func(context.Context, []T) error
}

func (r *Repository) categoryColl() collection[core.Category] {
	return collection[core.Category]{core.CollectionCategories, &r.categories, r.store.SaveCategories}
}

func (r *Repository) recordColl() collection[core.Record] {
	return collection[core.Record]{core.CollectionRecords, &r.records, r.store.SaveRecords}
}

func (r *Repository) expenseColl() collection[core.Expense] {
	return collection[core.Expense]{core.CollectionExpenses, &r.expenses, r.store.SaveExpenses}
}

// mutate runs fn on a copy of the collection under the write lock and saves
// the result. The in-memory collection is replaced only when the save
// succeeds. The save happens even when fn changed nothing; listeners are only
// told about changes that affected at least one entity.
func mutate[T any](ctx context.Context, r *Repository, c collection[T], op Op, fn func([]T) ([]T, []string)) error {
	r.mu.Lock()
	next, changed := fn(slices.Clone(*c.items))
	next = nonNil(next)
	if err := c.save(ctx, next); err != nil {
		r.mu.Unlock()
		log.LogError(ctx, r.logger, "Failed to persist mutation", err, string(op),
			log.NewFields().WithMutation(c.name.String(), changed))
		return fmt.Errorf("%s %s: %w", op, c.name, err)
	}
	*c.items = next
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "Mutation committed",
		log.NewFields().WithOperation(string(op)).WithMutation(c.name.String(), changed).ToSlice()...)
	if len(changed) > 0 {
		r.notify(ctx, Change{Collection: c.name, Op: op, IDs: changed})
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// removeIDs drops every item whose id is in ids and reports the removed ids.
func removeIDs[T any](items []T, ids []string, idOf func(T) string) ([]T, []string) {
	set := idSet(ids)
	var removed []string
	kept := items[:0]
	for _, it := range items {
		if _, ok := set[idOf(it)]; ok {
			removed = append(removed, idOf(it))
			continue
		}
		kept = append(kept, it)
	}
	return kept, removed
}

// updateIDs replaces every item whose id is in ids with fn(item).
func updateIDs[T any](items []T, ids []string, idOf func(T) string, fn func(T) T) ([]T, []string) {
	set := idSet(ids)
	var touched []string
	for i, it := range items {
		if _, ok := set[idOf(it)]; ok {
			items[i] = fn(it)
			touched = append(touched, idOf(it))
		}
	}
	return items, touched
}
