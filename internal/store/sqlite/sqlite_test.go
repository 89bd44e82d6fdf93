package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(filepath.Join(t.TempDir(), "checkin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackendRoundtrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	got, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, b.Set(ctx, "records", []byte(`{"x":1}`)))

	got, err = b.Get(ctx, "records")
	require.NoError(t, err)
	require.Equal(t, `{"x":1}`, string(got))

	// Upsert replaces the value.
	require.NoError(t, b.Set(ctx, "records", []byte(`{"x":2}`)))
	got, err = b.Get(ctx, "records")
	require.NoError(t, err)
	require.Equal(t, `{"x":2}`, string(got))
}

func TestBackendRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	require.NoError(t, b.Set(ctx, "a", []byte("1")))
	require.NoError(t, b.Set(ctx, "b", []byte("2")))

	require.NoError(t, b.Remove(ctx, "a"))
	got, err := b.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, b.Clear(ctx))
	got, err = b.Get(ctx, "b")
	require.NoError(t, err)
	require.Nil(t, got)
}
