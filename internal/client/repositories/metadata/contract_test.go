package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract checks the behaviour every backend must share.
func runContract(t *testing.T, newFactory func(t *testing.T) Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		r := newFactory(t).Namespace("auth_token")
		require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

		v, err := r.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x02}, v)
	})

	t.Run("absent key is nil nil", func(t *testing.T) {
		r := newFactory(t).Namespace("auth_token")
		v, err := r.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("empty value round-trips", func(t *testing.T) {
		r := newFactory(t).Namespace("auth_token")
		require.NoError(t, r.Set(ctx, "access_token", []byte{}))
		require.NoError(t, r.Set(ctx, "refresh_token", nil))

		for _, k := range []string{"access_token", "refresh_token"} {
			v, err := r.Get(ctx, k)
			require.NoError(t, err)
			require.NotNil(t, v, "stored empty value must not read as absent")
			assert.Empty(t, v)
		}

		m, err := r.List(ctx)
		require.NoError(t, err)
		require.Contains(t, m, "access_token")
		assert.NotNil(t, m["access_token"])
		assert.Empty(t, m["access_token"])
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		r := newFactory(t).Namespace("auth_token")
		require.NoError(t, r.Set(ctx, "k", []byte("old")))
		require.NoError(t, r.Set(ctx, "k", []byte("new")))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), v)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		r := newFactory(t).Namespace("auth_token")
		require.NoError(t, r.Set(ctx, "x", []byte{1}))
		require.NoError(t, r.Delete(ctx, "x"))

		v, err := r.Get(ctx, "x")
		require.NoError(t, err)
		assert.Nil(t, v)

		require.NoError(t, r.Delete(ctx, "x"))
	})

	t.Run("list returns namespace pairs only", func(t *testing.T) {
		f := newFactory(t)
		a := f.Namespace("user_cache")
		b := f.Namespace("team_prefs")
		require.NoError(t, a.Set(ctx, "user_info", []byte("{}")))
		require.NoError(t, a.Set(ctx, "cache_time", []byte("1")))
		require.NoError(t, b.Set(ctx, "view_mode", []byte("GLOBAL")))

		m, err := a.List(ctx)
		require.NoError(t, err)
		assert.Len(t, m, 2)
		assert.Equal(t, []byte("{}"), m["user_info"])
		assert.Equal(t, []byte("1"), m["cache_time"])
	})

	t.Run("clear leaves other namespaces intact", func(t *testing.T) {
		f := newFactory(t)
		a := f.Namespace("user_cache")
		b := f.Namespace("team_prefs")
		require.NoError(t, a.Set(ctx, "k", []byte{1}))
		require.NoError(t, b.Set(ctx, "k", []byte{2}))

		require.NoError(t, a.Clear(ctx))

		m, err := a.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, m)

		v, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte{2}, v)
	})

	t.Run("update commits all writes", func(t *testing.T) {
		r := newFactory(t).Namespace("auth_token")
		require.NoError(t, r.Set(ctx, "stale", []byte("s")))

		err := r.Update(ctx, func(tx Repository) error {
			if err := tx.Set(ctx, "access_token", []byte("a")); err != nil {
				return err
			}
			if err := tx.Set(ctx, "refresh_token", []byte("r")); err != nil {
				return err
			}
			return tx.Delete(ctx, "stale")
		})
		require.NoError(t, err)

		m, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{
			"access_token":  []byte("a"),
			"refresh_token": []byte("r"),
		}, m)
	})

	t.Run("update error propagates", func(t *testing.T) {
		r := newFactory(t).Namespace("auth_token")
		boom := errors.New("boom")
		err := r.Update(ctx, func(tx Repository) error { return boom })
		require.ErrorIs(t, err, boom)
	})
}
