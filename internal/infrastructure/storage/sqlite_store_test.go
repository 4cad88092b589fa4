package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_PutGetDelete(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "commandHistory")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "commandHistory", []byte(`[{"command":"pwd"}]`)))
	require.NoError(t, s.Put(ctx, "commandHistory", []byte(`[{"command":"ls"}]`)))

	got, err := s.Get(ctx, "commandHistory")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"command":"ls"}]`, string(got))

	require.NoError(t, s.Delete(ctx, "commandHistory"))
	_, err = s.Get(ctx, "commandHistory")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	first, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestSQLiteStore_UpdateAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	const perHandle = 20

	var stores []*SQLiteStore
	for i := 0; i < 2; i++ {
		s, err := OpenSQLiteStore(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		stores = append(stores, s)
	}

	var wg sync.WaitGroup
	for _, s := range stores {
		wg.Add(1)
		go func(s *SQLiteStore) {
			defer wg.Done()
			for i := 0; i < perHandle; i++ {
				err := s.Update(ctx, "counter", func(current []byte) ([]byte, error) {
					n := 0
					if len(current) > 0 {
						var err error
						if n, err = strconv.Atoi(string(current)); err != nil {
							return nil, err
						}
					}
					return []byte(strconv.Itoa(n + 1)), nil
				})
				assert.NoError(t, err)
			}
		}(s)
	}
	wg.Wait()

	got, err := stores[0].Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(len(stores)*perHandle), string(got))
}

func TestSQLiteStore_UpdateErrorRollsBack(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	boom := errors.New("boom")

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	err := s.Update(ctx, "k", func(current []byte) ([]byte, error) {
		assert.Equal(t, "v", string(current))
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	// The connection is usable again after the rollback.
	require.NoError(t, s.Update(ctx, "k", func([]byte) ([]byte, error) { return []byte("w"), nil }))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "w", string(got))
}
