package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "goaltickets/internal/domain/cart"
)

func TestGetMissingReturnsNilNil(t *testing.T) {
	r := NewCartRepositoryMem()

	c, err := r.GetBySessionID(context.Background(), "session_missing")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestUpsertThenGet(t *testing.T) {
	r := NewCartRepositoryMem()
	ctx := context.Background()
	now := time.Now()

	c, err := cartdom.New("session_1_a", now)
	require.NoError(t, err)
	require.NoError(t, c.Add(cartdom.Item{ID: "item_1", Price: 10, Quantity: 2}, cartdom.MergeByID, now))

	require.NoError(t, r.Upsert(ctx, c))

	got, err := r.GetBySessionID(ctx, "session_1_a")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestStoredStateIsIsolated(t *testing.T) {
	r := NewCartRepositoryMem()
	ctx := context.Background()
	now := time.Now()

	c, _ := cartdom.New("s", now)
	require.NoError(t, c.Add(cartdom.Item{ID: "item_1", Price: 10, Quantity: 1}, cartdom.MergeByID, now))
	require.NoError(t, r.Upsert(ctx, c))

	// mutating the caller's copy must not leak into the store
	c.Items[0].Quantity = 99

	got, err := r.GetBySessionID(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)

	// mutating a read copy must not leak either
	got.Items[0].Quantity = 42
	again, err := r.GetBySessionID(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestDelete(t *testing.T) {
	r := NewCartRepositoryMem()
	ctx := context.Background()

	c, _ := cartdom.New("s", time.Now())
	require.NoError(t, r.Upsert(ctx, c))
	require.Equal(t, 1, r.Len())

	require.NoError(t, r.DeleteBySessionID(ctx, "s"))
	assert.Equal(t, 0, r.Len())

	// deleting again is fine
	assert.NoError(t, r.DeleteBySessionID(ctx, "s"))
}

func TestEmptySessionIDRejected(t *testing.T) {
	r := NewCartRepositoryMem()
	ctx := context.Background()

	_, err := r.GetBySessionID(ctx, "  ")
	assert.Error(t, err)
	assert.Error(t, r.Upsert(ctx, nil))
	assert.Error(t, r.DeleteBySessionID(ctx, ""))
}
