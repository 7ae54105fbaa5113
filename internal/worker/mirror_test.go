package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idledger/internal/amqp"
	"idledger/internal/core"
	"idledger/internal/repository"
	"idledger/internal/sheets/memory"
	"idledger/internal/storage"
)

type failingWriter struct{}

func (failingWriter) ReplaceTab(context.Context, string, [][]any) error {
	return errors.New("quota exceeded")
}

func setup(t *testing.T) (*storage.Adapter, *repository.Repository) {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemoryBlobs(), nil)
	snap, err := adapter.Open(context.Background())
	require.NoError(t, err)
	return adapter, repository.New(adapter, snap)
}

func TestHandleChangeMirrorsPersistedCollection(t *testing.T) {
	ctx := context.Background()
	adapter, repo := setup(t)
	tabs := memory.New()
	m := NewMirror(adapter, tabs, "IDLedger", nil)

	_, err := repo.CreateExpense(ctx, core.ExpenseInput{Title: "Server", Amount: decimal.NewFromInt(99)})
	require.NoError(t, err)

	require.NoError(t, m.HandleChange(ctx, amqp.NewChangeEvent("id_expenses", "create", nil)))

	rows, ok := tabs.Tab("IDLedger Expenses")
	require.True(t, ok)
	require.Len(t, rows, 4, "header + two seeded + one created")
	assert.Equal(t, "Server", rows[3][1])
	assert.Equal(t, float64(99), rows[3][2])
	assert.Equal(t, []string{"IDLedger Expenses"}, tabs.Tabs())
}

func TestHandleChangeDropsUnknownCollection(t *testing.T) {
	adapter, _ := setup(t)
	tabs := memory.New()
	m := NewMirror(adapter, tabs, "", nil)

	require.NoError(t, m.HandleChange(context.Background(), amqp.NewChangeEvent("id_users", "create", nil)))
	assert.Zero(t, tabs.Writes())
}

func TestHandleChangeWriterErrorIsReturned(t *testing.T) {
	adapter, _ := setup(t)
	m := NewMirror(adapter, failingWriter{}, "", nil)

	err := m.HandleChange(context.Background(), amqp.NewChangeEvent("id_records", "delete", []string{"1"}))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestResyncWritesEveryCollection(t *testing.T) {
	adapter, _ := setup(t)
	tabs := memory.New()
	m := NewMirror(adapter, tabs, "", nil)

	require.NoError(t, m.Resync(context.Background()))
	assert.Equal(t, []string{"Categories", "Expenses", "Records"}, tabs.Tabs())

	rows, _ := tabs.Tab("Records")
	assert.Len(t, rows, 3)
}

func TestRunResyncStopsOnCancel(t *testing.T) {
	adapter, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewMirror(adapter, memory.New(), "", nil).RunResync(ctx, 1<<30)
		close(done)
	}()
	<-done
}
