package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(filepath.Join(t.TempDir(), "solsend.db"), nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	// Empty store has no owner.
	last, err := s.LastOwner()
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, s.SaveOwner("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"))
	last, err = s.LastOwner()
	require.NoError(t, err)
	assert.Equal(t, "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", last)

	// Saving again overwrites.
	require.NoError(t, s.SaveOwner("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"))
	last, err = s.LastOwner()
	require.NoError(t, err)
	assert.Equal(t, "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", last)
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveOwner("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"))
	require.NoError(t, s.Clear())

	last, err := s.LastOwner()
	require.NoError(t, err)
	assert.Empty(t, last)

	// Clearing an already-empty store is fine.
	require.NoError(t, s.Clear())
}
