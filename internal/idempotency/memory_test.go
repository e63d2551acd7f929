package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	record, err := store.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, record)

	_, err = store.Reserve(ctx, "k1", time.Minute)
	assert.ErrorIs(t, err, ErrInProgress)

	require.NoError(t, store.Complete(ctx, "k1", Record{Status: 200, Body: []byte(`{"ok":true}`)}, time.Minute))

	record, err = store.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 200, record.Status)
	assert.Equal(t, `{"ok":true}`, string(record.Body))
}

func TestMemoryStoreRelease(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k1"))

	record, err := store.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Complete(ctx, "k1", Record{Status: 200}, time.Minute))

	now = now.Add(2 * time.Minute)
	record, err := store.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, record, "expired records are not replayed")
}
