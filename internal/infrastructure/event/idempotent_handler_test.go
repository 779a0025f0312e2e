package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edi/backend/internal/infrastructure/cache"
	"github.com/edi/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (failingStore) IsProcessed(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (failingStore) Close() error { return nil }

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("handles each event once", func(t *testing.T) {
		inner := testutil.NewMockEventHandler("OrderApproved")
		store := cache.NewMemoryStore()
		defer store.Close()
		h := NewIdempotentHandler(inner, store, time.Hour, nil)

		evt := testutil.NewTestEvent("OrderApproved", "MP20260131000001")
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, testutil.NewTestEvent("OrderApproved", "MP20260131000002")))

		assert.Equal(t, 2, inner.HandledCount())
		assert.Equal(t, IdempotencyStats{Processed: 2, Duplicate: 1}, h.Stats())
		assert.Equal(t, []string{"OrderApproved"}, h.EventTypes())
	})

	t.Run("handler error is counted and returned", func(t *testing.T) {
		inner := testutil.NewMockEventHandler("InvoiceIssued")
		inner.SetError(errors.New("meter unavailable"))
		store := cache.NewMemoryStore()
		defer store.Close()
		h := NewIdempotentHandler(inner, store, 0, nil)

		err := h.Handle(ctx, testutil.NewTestEvent("InvoiceIssued", "2602001"))
		assert.EqualError(t, err, "meter unavailable")
		assert.Equal(t, int64(1), h.Stats().Failed)
	})

	t.Run("store failure still handles the event", func(t *testing.T) {
		inner := testutil.NewMockEventHandler("OrderPublished")
		h := NewIdempotentHandler(inner, failingStore{}, time.Hour, nil)

		evt := testutil.NewTestEvent("OrderPublished", "MP20260131000001")
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))
		assert.Equal(t, 2, inner.HandledCount())
	})
}
