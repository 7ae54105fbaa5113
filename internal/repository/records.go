package repository

import (
	"context"

	"idledger/internal/core"
)

func recordID(r core.Record) string { return r.ID }

func (r *Repository) newRecord(id, date string, in core.RecordInput) core.Record {
	status := in.Status
	if status == "" {
		status = core.StatusAvailable
	}
	return core.Record{
		ID:        id,
		Category:  in.Category,
		Name:      in.Name,
		Details:   in.Details,
		Profit:    in.Profit,
		Status:    status,
		DateAdded: date,
	}
}

// CreateRecord appends one record stamped with today's date.
func (r *Repository) CreateRecord(ctx context.Context, in core.RecordInput) (core.Record, error) {
	var created core.Record
	err := mutate(ctx, r, r.recordColl(), OpCreate, func(items []core.Record) ([]core.Record, []string) {
		created = r.newRecord(r.ids.reserve(1)[0], r.today(), in)
		return append(items, created), []string{created.ID}
	})
	if err != nil {
		return core.Record{}, err
	}
	return created, nil
}

// CreateRecords appends one record per input in a single step. All of them
// share one dateAdded and get consecutive ids.
func (r *Repository) CreateRecords(ctx context.Context, in []core.RecordInput) ([]core.Record, error) {
	var created []core.Record
	err := mutate(ctx, r, r.recordColl(), OpCreateBatch, func(items []core.Record) ([]core.Record, []string) {
		ids := r.ids.reserve(len(in))
		date := r.today()
		created = make([]core.Record, len(in))
		for i, x := range in {
			created[i] = r.newRecord(ids[i], date, x)
		}
		return append(items, created...), ids
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	return r.deleteRecords(ctx, OpDelete, []string{id})
}

// BulkDeleteRecords removes every listed record at once. Unknown ids are ignored.
func (r *Repository) BulkDeleteRecords(ctx context.Context, ids []string) error {
	return r.deleteRecords(ctx, OpBulkDelete, ids)
}

func (r *Repository) deleteRecords(ctx context.Context, op Op, ids []string) error {
	return mutate(ctx, r, r.recordColl(), op, func(items []core.Record) ([]core.Record, []string) {
		return removeIDs(items, ids, recordID)
	})
}

func (r *Repository) UpdateRecord(ctx context.Context, id string, patch core.RecordPatch) error {
	return r.updateRecords(ctx, OpUpdate, []string{id}, patch)
}

// BulkUpdateRecords applies the same patch to every listed record in one step.
func (r *Repository) BulkUpdateRecords(ctx context.Context, ids []string, patch core.RecordPatch) error {
	return r.updateRecords(ctx, OpBulkUpdate, ids, patch)
}

func (r *Repository) updateRecords(ctx context.Context, op Op, ids []string, patch core.RecordPatch) error {
	return mutate(ctx, r, r.recordColl(), op, func(items []core.Record) ([]core.Record, []string) {
		return updateIDs(items, ids, recordID, patch.Apply)
	})
}

func (r *Repository) ToggleStatus(ctx context.Context, id string) error {
	return r.toggle(ctx, OpToggleStatus, []string{id})
}

// BulkToggleStatus flips each listed record individually.
func (r *Repository) BulkToggleStatus(ctx context.Context, ids []string) error {
	return r.toggle(ctx, OpBulkToggleStatus, ids)
}

func (r *Repository) toggle(ctx context.Context, op Op, ids []string) error {
	return mutate(ctx, r, r.recordColl(), op, func(items []core.Record) ([]core.Record, []string) {
		return updateIDs(items, ids, recordID, func(rec core.Record) core.Record {
			rec.Status = rec.Status.Toggle()
			return rec
		})
	})
}
