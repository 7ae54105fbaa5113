package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idledger/internal/core"
)

type failingBlobs struct {
	*MemoryBlobs
	getErr error
	putErr error
}

func (f *failingBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.MemoryBlobs.Get(ctx, key)
}

func (f *failingBlobs) Put(ctx context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryBlobs.Put(ctx, key, data)
}

func TestOpenEmptyStoreReturnsSeed(t *testing.T) {
	blobs := NewMemoryBlobs()
	snap, err := NewAdapter(blobs, nil).Open(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Categories, 3)
	assert.Len(t, snap.Records, 2)
	assert.Len(t, snap.Expenses, 2)
	assert.Equal(t, "Cyborg", snap.Records[0].Category)
	assert.True(t, snap.Records[0].Profit.Equal(decimal.NewFromInt(450)))

	// Seeds are not written back until something is saved.
	_, ok, _ := blobs.Get(context.Background(), core.CollectionRecords.String())
	assert.False(t, ok)

	v, ok, err := readSchemaVersion(context.Background(), blobs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SchemaVersion, v)
}

func TestSaveThenReloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	a := NewAdapter(blobs, nil)

	records := []core.Record{{
		ID: "1698200000000", Category: "Dragon", Name: "abc:def", Details: "V4",
		Profit: decimal.RequireFromString("12.5"), Status: core.StatusSold, DateAdded: "2024-01-02",
	}}
	require.NoError(t, a.SaveRecords(ctx, records))
	require.NoError(t, a.SaveCategories(ctx, nil))

	snap, err := NewAdapter(blobs, nil).Open(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "abc:def", snap.Records[0].Name)
	assert.Equal(t, "12.5", snap.Records[0].Profit.String())
	assert.Empty(t, snap.Categories)
	assert.NotNil(t, snap.Categories)
	assert.Len(t, snap.Expenses, 2, "absent expenses fall back to seed")
}

func TestStoredJSONLayout(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	a := NewAdapter(blobs, nil)
	require.NoError(t, a.SaveExpenses(ctx, []core.Expense{{ID: "5", Title: "Ads", Amount: decimal.NewFromInt(500), Date: "2023-10-25"}}))

	data, _, _ := blobs.Get(ctx, "id_expenses")
	assert.JSONEq(t, `[{"id":"5","title":"Ads","amount":500,"date":"2023-10-25"}]`, string(data))
}

func TestMalformedBlobIsFatal(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	require.NoError(t, blobs.Put(ctx, SchemaVersionKey, []byte("2")))
	require.NoError(t, blobs.Put(ctx, "id_categories", []byte(`{not json`)))

	_, err := NewAdapter(blobs, nil).Open(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedBlob)
}

func TestSchemaTooNew(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	require.NoError(t, blobs.Put(ctx, SchemaVersionKey, []byte("99")))

	_, err := NewAdapter(blobs, nil).Open(ctx)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestLegacyValuesNormalized(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	require.NoError(t, blobs.Put(ctx, "id_records",
		[]byte(`[{"id":"1","category":"Cyborg","name":"x","details":"","profit":null,"dateAdded":"2023-10-25"}]`)))
	require.NoError(t, blobs.Put(ctx, "id_expenses",
		[]byte(`[{"id":"1","title":"Gas","amount":null,"date":"2023-10-25"}]`)))

	snap, err := NewAdapter(blobs, nil).Open(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, core.StatusAvailable, snap.Records[0].Status)
	assert.True(t, snap.Records[0].Profit.IsZero())

	data, _, _ := blobs.Get(ctx, "id_expenses")
	assert.JSONEq(t, `[{"id":"1","title":"Gas","amount":0,"date":"2023-10-25"}]`, string(data))

	// Second open finds the current version and changes nothing.
	_, err = NewAdapter(blobs, nil).Open(ctx)
	require.NoError(t, err)
}

func TestLoadAndSaveErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("medium offline")

	_, err := NewAdapter(&failingBlobs{MemoryBlobs: NewMemoryBlobs(), getErr: boom}, nil).LoadSnapshot(ctx)
	assert.ErrorIs(t, err, boom)

	err = NewAdapter(&failingBlobs{MemoryBlobs: NewMemoryBlobs(), putErr: boom}, nil).SaveRecords(ctx, nil)
	assert.ErrorIs(t, err, boom)
}

func TestSeedReturnsFreshSlices(t *testing.T) {
	a := Seed()
	a.Records[0].Name = "changed"
	assert.Equal(t, "katw63erct25:kl2pc97640l", Seed().Records[0].Name)
}
