package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"idledger/internal/core"
	"idledger/internal/log"
)

// Adapter maps the three ledger collections onto a Blobs medium.
type Adapter struct {
	blobs  Blobs
	logger *log.Logger
}

func NewAdapter(blobs Blobs, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Adapter{blobs: blobs, logger: logger.WithComponent(log.ComponentStorage)}
}

// Open upgrades the stored layout and loads the initial snapshot. Any error
// here is fatal for the caller.
func (a *Adapter) Open(ctx context.Context) (core.Snapshot, error) {
	from, to, err := migrateSchema(ctx, a.blobs)
	if err != nil {
		return core.Snapshot{}, err
	}
	if from != to {
		a.logger.InfoContext(ctx, "Schema migrated",
			log.FieldOperation, log.OpMigrate, "from", from, "to", to)
	}
	return a.LoadSnapshot(ctx)
}

// LoadSnapshot loads the three collections concurrently. A collection with
// no stored value comes back as its seed.
func (a *Adapter) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	seed := Seed()
	var snap core.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := load(gctx, a.blobs, core.CollectionCategories, seed.Categories)
		snap.Categories = items
		return err
	})
	g.Go(func() error {
		items, err := load(gctx, a.blobs, core.CollectionRecords, seed.Records)
		snap.Records = items
		return err
	})
	g.Go(func() error {
		items, err := load(gctx, a.blobs, core.CollectionExpenses, seed.Expenses)
		snap.Expenses = items
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}

	a.logger.DebugContext(ctx, "Snapshot loaded",
		log.FieldOperation, log.OpLoad,
		"categories", len(snap.Categories),
		"records", len(snap.Records),
		"expenses", len(snap.Expenses))
	return snap, nil
}

func (a *Adapter) SaveCategories(ctx context.Context, items []core.Category) error {
	return a.save(ctx, core.CollectionCategories, items, len(items))
}

func (a *Adapter) SaveRecords(ctx context.Context, items []core.Record) error {
	return a.save(ctx, core.CollectionRecords, items, len(items))
}

func (a *Adapter) SaveExpenses(ctx context.Context, items []core.Expense) error {
	return a.save(ctx, core.CollectionExpenses, items, len(items))
}

func (a *Adapter) save(ctx context.Context, key core.Collection, items any, n int) error {
	if err := put(ctx, a.blobs, key, items); err != nil {
		return err
	}
	a.logger.DebugContext(ctx, "Collection saved",
		log.FieldOperation, log.OpSave, log.FieldCollection, key.String(), log.FieldCount, n)
	return nil
}

func (a *Adapter) Close() error {
	return a.blobs.Close()
}

func load[T any](ctx context.Context, blobs Blobs, key core.Collection, seed []T) ([]T, error) {
	data, ok, err := blobs.Get(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return seed, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedBlob, key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func put(ctx context.Context, blobs Blobs, key core.Collection, items any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if string(data) == "null" {
		data = []byte("[]")
	}
	if err := blobs.Put(ctx, key.String(), data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
