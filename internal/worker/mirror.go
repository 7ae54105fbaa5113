// Package worker mirrors ledger collections into spreadsheet tabs in
// response to change events.
package worker

import (
	"context"
	"fmt"
	"time"

	"idledger/internal/amqp"
	"idledger/internal/core"
	"idledger/internal/log"
	"idledger/internal/sheets"
)

// SnapshotLoader reads the current persisted state.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (core.Snapshot, error)
}

// Mirror rewrites the tab of a collection from storage whenever that
// collection changes. Events only say what changed; the content always comes
// from storage, so replayed or out-of-order events converge on the same tab.
type Mirror struct {
	loader SnapshotLoader
	writer sheets.TabWriter
	base   string
	logger *log.Logger
}

func NewMirror(loader SnapshotLoader, writer sheets.TabWriter, base string, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.Discard()
	}
	return &Mirror{
		loader: loader,
		writer: writer,
		base:   base,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange processes a single change event from AMQP.
func (m *Mirror) HandleChange(ctx context.Context, event *amqp.ChangeEvent) error {
	c := core.Collection(event.Collection)
	if !c.Valid() {
		// Requeueing would loop forever on an event no build can handle.
		m.logger.WarnContext(ctx, "Dropping change event for unknown collection",
			"event_id", event.ID.String(), log.FieldCollection, event.Collection)
		return nil
	}

	m.logger.InfoContext(ctx, "Processing change event",
		"event_id", event.ID.String(),
		log.FieldCollection, event.Collection,
		log.FieldOperation, event.Op,
		log.FieldCount, len(event.IDs))

	snap, err := m.loader.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	return m.write(ctx, snap, c)
}

// Resync rewrites every collection tab.
func (m *Mirror) Resync(ctx context.Context) error {
	snap, err := m.loader.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	for _, c := range core.Collections() {
		if err := m.write(ctx, snap, c); err != nil {
			return err
		}
	}
	m.logger.InfoContext(ctx, "Full resync completed")
	return nil
}

// RunResync resyncs every interval until ctx is done. Failures are logged and
// retried on the next tick.
func (m *Mirror) RunResync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Resync(ctx); err != nil && ctx.Err() == nil {
				log.LogError(ctx, m.logger, "Periodic resync failed", err, log.OpMirror, nil)
			}
		}
	}
}

func (m *Mirror) write(ctx context.Context, snap core.Snapshot, c core.Collection) error {
	rows, err := sheets.Rows(snap, c)
	if err != nil {
		return err
	}
	tab := sheets.TabName(m.base, c)
	if err := m.writer.ReplaceTab(ctx, tab, rows); err != nil {
		return fmt.Errorf("mirror %s to %s: %w", c, tab, err)
	}
	return nil
}
