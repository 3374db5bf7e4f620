package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("put open delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "projects/uid-1/a.pdf", strings.NewReader("hello"), 5, "application/pdf"))

		rc, err := store.Open(ctx, "projects/uid-1/a.pdf")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "hello", string(data))

		require.NoError(t, store.Delete(ctx, "projects/uid-1/a.pdf"))
		_, err = store.Open(ctx, "projects/uid-1/a.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("size mismatch leaves nothing behind", func(t *testing.T) {
		err := store.Put(ctx, "projects/uid-1/b.pdf", strings.NewReader("abc"), 10, "")
		assert.Error(t, err)

		_, err = store.Open(ctx, "projects/uid-1/b.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete of missing key is not an error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "projects/none"))
	})

	t.Run("rejects keys escaping root", func(t *testing.T) {
		assert.Error(t, store.Put(ctx, "../escape.txt", strings.NewReader("x"), 1, ""))
		_, err := store.Open(ctx, "../../etc/passwd")
		assert.Error(t, err)
		assert.Error(t, store.Delete(ctx, ""))
	})
}
