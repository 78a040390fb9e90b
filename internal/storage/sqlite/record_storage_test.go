package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "folio.db")
	m, err := NewManager(common.NewSilentLogger(), &config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestRecordStorage_RoundTripPreservesOrder(t *testing.T) {
	store := newTestManager(t).RecordStore()
	ctx := context.Background()

	records := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	require.NoError(t, store.SaveAll(ctx, interfaces.EntityTransactions, records))

	got, err := store.LoadAll(ctx, interfaces.EntityTransactions)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestRecordStorage_SaveAllReplaces(t *testing.T) {
	store := newTestManager(t).RecordStore()
	ctx := context.Background()

	require.NoError(t, store.SaveAll(ctx, interfaces.EntityHoldings, [][]byte{[]byte("a"), []byte("b")}))
	require.NoError(t, store.SaveAll(ctx, interfaces.EntityHoldings, [][]byte{[]byte("c")}))

	got, err := store.LoadAll(ctx, interfaces.EntityHoldings)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c")}, got)
}

func TestRecordStorage_SaveBatchAndClear(t *testing.T) {
	m := newTestManager(t)
	store := m.RecordStore()
	ctx := context.Background()

	saver, ok := store.(interfaces.BatchSaver)
	require.True(t, ok, "sqlite store should implement BatchSaver")

	require.NoError(t, saver.SaveBatch(ctx, map[interfaces.Entity][][]byte{
		interfaces.EntityHoldings:  {[]byte("h")},
		interfaces.EntityDividends: {[]byte("d1"), []byte("d2")},
	}))

	divs, err := store.LoadAll(ctx, interfaces.EntityDividends)
	require.NoError(t, err)
	assert.Len(t, divs, 2)

	require.NoError(t, store.ClearAll(ctx))
	for _, entity := range interfaces.Entities {
		got, err := store.LoadAll(ctx, entity)
		require.NoError(t, err)
		assert.Empty(t, got, entity)
	}
}

func TestRecordStorage_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.db")
	ctx := context.Background()

	m, err := NewManager(common.NewSilentLogger(), &config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, m.RecordStore().SaveAll(ctx, interfaces.EntityHoldings, [][]byte{[]byte("kept")}))
	require.NoError(t, m.Close())

	m, err = NewManager(common.NewSilentLogger(), &config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer m.Close()

	got, err := m.RecordStore().LoadAll(ctx, interfaces.EntityHoldings)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("kept")}, got)
}
