package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certichain/pkg/domain-errors"
)

func TestMemoryStoreRecordAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	err := store.Record(ctx, Entry{TokenID: 42, Recipient: "0xA1", Name: "Alice Smith", TxHash: "0xdead"})
	require.NoError(t, err)

	entry, err := store.FindByToken(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", entry.Name)
	assert.False(t, entry.IssuedAt.IsZero())
}

func TestMemoryStoreFindMissing(t *testing.T) {
	store := NewMemory()
	_, err := store.FindByToken(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	base := time.Now().UTC()

	require.NoError(t, store.Record(ctx, Entry{TokenID: 1, IssuedAt: base.Add(-time.Hour)}))
	require.NoError(t, store.Record(ctx, Entry{TokenID: 2, IssuedAt: base}))
	require.NoError(t, store.Record(ctx, Entry{TokenID: 3, IssuedAt: base.Add(-time.Minute)}))

	entries, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(2), entries[0].TokenID)
	assert.Equal(t, uint64(3), entries[1].TokenID)
}
