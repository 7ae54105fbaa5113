package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"idledger/internal/core"
)

// SchemaVersionKey holds the integer layout version of the stored collections.
// The collections themselves stay plain JSON arrays.
const SchemaVersionKey = "id_schema_version"

// SchemaVersion is the layout this build reads and writes.
const SchemaVersion = 2

// migration upgrades stored blobs from version N to N+1.
type migration func(ctx context.Context, blobs Blobs) error

// migrations[i] upgrades version i+1 to version i+2.
var migrations = []migration{
	normalizeLegacyValues,
}

func readSchemaVersion(ctx context.Context, blobs Blobs) (int, bool, error) {
	data, ok, err := blobs.Get(ctx, SchemaVersionKey)
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || v < 1 {
		return 0, false, fmt.Errorf("%w: %s: %q", ErrMalformedBlob, SchemaVersionKey, data)
	}
	return v, true, nil
}

func writeSchemaVersion(ctx context.Context, blobs Blobs, v int) error {
	if err := blobs.Put(ctx, SchemaVersionKey, []byte(strconv.Itoa(v))); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// migrateSchema runs every pending migration in order. A store with no version
// key predates versioning and is treated as version 1.
func migrateSchema(ctx context.Context, blobs Blobs) (from, to int, err error) {
	v, ok, err := readSchemaVersion(ctx, blobs)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		v = 1
	}
	if v > SchemaVersion {
		return v, v, fmt.Errorf("%w: stored %d, supported %d", ErrSchemaTooNew, v, SchemaVersion)
	}
	from = v
	for ; v < SchemaVersion; v++ {
		if err := migrations[v-1](ctx, blobs); err != nil {
			return from, v, fmt.Errorf("migrate schema %d to %d: %w", v, v+1, err)
		}
		if err := writeSchemaVersion(ctx, blobs, v+1); err != nil {
			return from, v, err
		}
	}
	return from, v, nil
}

// normalizeLegacyValues rewrites version 1 data: money fields that were stored
// as null (an unparsable form value) become 0, and records with no status
// become AVAILABLE.
func normalizeLegacyValues(ctx context.Context, blobs Blobs) error {
	if err := rewrite(ctx, blobs, core.CollectionRecords, func(items []core.Record) []core.Record {
		for i := range items {
			if items[i].Status == "" {
				items[i].Status = core.StatusAvailable
			}
		}
		return items
	}); err != nil {
		return err
	}
	return rewrite(ctx, blobs, core.CollectionExpenses, func(items []core.Expense) []core.Expense {
		return items
	})
}

// rewrite decodes a stored collection, transforms it and stores it back.
// Absent keys are left absent. Decoding maps null money fields to zero, so
// re-encoding alone normalizes them.
func rewrite[T any](ctx context.Context, blobs Blobs, key core.Collection, fn func([]T) []T) error {
	data, ok, err := blobs.Get(ctx, key.String())
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedBlob, key, err)
	}
	return put(ctx, blobs, key, fn(items))
}
