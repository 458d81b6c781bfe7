// Package storetest holds the behavior every store.ProgressStore
// implementation must share, as a reusable test suite.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/stargazer/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.ProgressStore

// RunProgressStoreTests exercises the ProgressStore contract against the
// stores produced by newStore.
func RunProgressStoreTests(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "absent")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("create then read", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rev, err := s.Put(ctx, "learner", []byte(`{"schemaVersion":3}`), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rev)

		rec, err := s.Get(ctx, "learner")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Revision)
		assert.JSONEq(t, `{"schemaVersion":3}`, string(rec.Data))
	})

	t.Run("update advances revision", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rev, err := s.Put(ctx, "learner", []byte(`{"v":1}`), 0)
		require.NoError(t, err)
		rev, err = s.Put(ctx, "learner", []byte(`{"v":2}`), rev)
		require.NoError(t, err)
		assert.Equal(t, int64(2), rev)

		rec, err := s.Get(ctx, "learner")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(rec.Data))
	})

	t.Run("stale revision conflicts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Put(ctx, "learner", []byte(`{"v":1}`), 0)
		require.NoError(t, err)

		_, err = s.Put(ctx, "learner", []byte(`{"v":"again"}`), 0)
		assert.ErrorIs(t, err, store.ErrConflict, "create over an existing key")

		_, err = s.Put(ctx, "learner", []byte(`{"v":"stale"}`), 7)
		assert.True(t, store.IsConflictError(err))

		rec, err := s.Get(ctx, "learner")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(rec.Data), "failed writes leave the value alone")
	})

	t.Run("update of missing key conflicts", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Put(context.Background(), "learner", []byte(`{}`), 3)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Put(ctx, "a", []byte(`{"who":"a"}`), 0)
		require.NoError(t, err)
		_, err = s.Put(ctx, "b", []byte(`{"who":"b"}`), 0)
		require.NoError(t, err)

		rec, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"who":"a"}`, string(rec.Data))
	})

	t.Run("returned data is a copy", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		data := []byte(`{"v":1}`)

		_, err := s.Put(ctx, "learner", data, 0)
		require.NoError(t, err)
		data[0] = 'X'

		rec, err := s.Get(ctx, "learner")
		require.NoError(t, err)
		rec.Data[0] = 'Y'

		again, err := s.Get(ctx, "learner")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(again.Data))
	})

	t.Run("concurrent writers from one revision", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		rev, err := s.Put(ctx, "learner", []byte(`{"v":0}`), 0)
		require.NoError(t, err)

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Put(ctx, "learner", []byte(`{"v":1}`), rev); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded, "exactly one writer wins")
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Put(ctx, "learner", []byte(`{}`), 0)
		assert.Error(t, err)
	})
}
