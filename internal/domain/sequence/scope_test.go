package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/edi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_Key(t *testing.T) {
	day := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "customer", CustomerScope().Key())
	assert.Equal(t, "project:PRJ", ProjectScope().Key())
	assert.Equal(t, "order:MP20260201", OrderScope(day).Key())
	assert.Equal(t, "invoice:2602", InvoiceScope(day).Key())
}

func TestScope_Format(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		scope  Scope
		suffix int64
		want   string
	}{
		{"customer", CustomerScope(), 42, "0000000042"},
		{"project", ProjectScope(), 7, "PRJ00000007"},
		{"order", OrderScope(day), 3, "MP20260201000003"},
		{"invoice", InvoiceScope(day), 1, "2602001"},
		{"invoice upper bound", InvoiceScope(day), 999, "2602999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scope.Format(tt.suffix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("overflow is reported, not wrapped", func(t *testing.T) {
		_, err := InvoiceScope(day).Format(1000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrSequenceExhausted))
	})
}

func TestScope_MaxSuffix(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("skips malformed suffixes", func(t *testing.T) {
		scope := InvoiceScope(day)
		highest, malformed := scope.MaxSuffix([]string{"2602001", "2602abc", "2602007", "2602", "26020099"})
		assert.Equal(t, int64(7), highest)
		assert.Equal(t, []string{"2602abc", "2602", "26020099"}, malformed)
	})

	t.Run("customer ids must be fully numeric", func(t *testing.T) {
		highest, malformed := CustomerScope().MaxSuffix([]string{"0000000009", "C-0001", "0000000010"})
		assert.Equal(t, int64(10), highest)
		assert.Equal(t, []string{"C-0001"}, malformed)
	})

	t.Run("ids outside the prefix are reported as malformed", func(t *testing.T) {
		highest, malformed := ProjectScope().MaxSuffix([]string{"XYZ00000099", "PRJ00000004"})
		assert.Equal(t, int64(4), highest)
		assert.Len(t, malformed, 1)
	})
}

func TestMemoryAllocator_Allocate(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("continues after seeded ids", func(t *testing.T) {
		a := NewMemoryAllocator()
		a.Seed(OrderScope(day), "MP20260201000004", "MP20260201bad")

		id, err := a.Allocate(ctx, OrderScope(day))
		require.NoError(t, err)
		assert.Equal(t, "MP20260201000005", id)
	})

	t.Run("scopes are independent", func(t *testing.T) {
		a := NewMemoryAllocator()
		first, err := a.Allocate(ctx, InvoiceScope(day))
		require.NoError(t, err)
		other, err := a.Allocate(ctx, InvoiceScope(day.AddDate(0, 1, 0)))
		require.NoError(t, err)

		assert.Equal(t, "2602001", first)
		assert.Equal(t, "2603001", other)
	})

	t.Run("exhaustion does not advance the counter", func(t *testing.T) {
		a := NewMemoryAllocator()
		a.Seed(InvoiceScope(day), "2602999")

		_, err := a.Allocate(ctx, InvoiceScope(day))
		assert.True(t, errors.Is(err, shared.ErrSequenceExhausted))
		_, err = a.Allocate(ctx, InvoiceScope(day))
		assert.True(t, errors.Is(err, shared.ErrSequenceExhausted))
	})

	t.Run("concurrent allocation yields distinct ids", func(t *testing.T) {
		a := NewMemoryAllocator()
		const n = 50

		var wg sync.WaitGroup
		ids := make(chan string, n)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := a.Allocate(ctx, ProjectScope())
				assert.NoError(t, err)
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
		assert.True(t, seen["PRJ00000050"])
	})
}
