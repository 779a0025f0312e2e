package printing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileSystemStore {
	store, err := NewFileSystemStore(t.TempDir(), nil)
	require.NoError(t, err)
	return store
}

func TestFileSystemStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	data := []byte("%PDF-1.4 acceptance")
	key := printing.DocumentKey(printing.KindAcceptance, "MP20260201000001", printing.Digest(data))

	require.NoError(t, store.Put(ctx, key, data))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = os.Stat(filepath.Join(store.BasePath(), filepath.FromSlash(key)))
	assert.NoError(t, err)
}

func TestFileSystemStore_WriteOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := "acceptances/MP20260201000001/abc.pdf"

	require.NoError(t, store.Put(ctx, key, []byte("first")))
	assert.NoError(t, store.Put(ctx, key, []byte("first")), "identical bytes are accepted")

	err := store.Put(ctx, key, []byte("second"))
	assert.True(t, errors.Is(err, printing.ErrContentExists))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	entries, err := os.ReadDir(filepath.Join(store.BasePath(), "acceptances", "MP20260201000001"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileSystemStore_Missing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "orders/none.pdf")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.NoError(t, store.Delete(ctx, "orders/none.pdf"))
}

func TestFileSystemStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Put(ctx, "orders/a.pdf", []byte("a")))

	require.NoError(t, store.Delete(ctx, "orders/a.pdf"))
	_, err := store.Get(ctx, "orders/a.pdf")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestFileSystemStore_RejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, key := range []string{"", "/etc/passwd", "../escape.pdf", "orders/../../escape.pdf", `orders\a.pdf`, "orders//a.pdf", "./a.pdf"} {
		t.Run(key, func(t *testing.T) {
			err := store.Put(ctx, key, []byte("x"))
			assert.True(t, errors.Is(err, shared.ErrInvalidInput), "put %q", key)
			_, err = store.Get(ctx, key)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput), "get %q", key)
		})
	}
}

func TestFileSystemStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "orders/a.pdf", []byte("a")), context.Canceled)
}
