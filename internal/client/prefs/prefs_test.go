package prefs

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrefs(t *testing.T) (*Prefs, metadata.Repository) {
	t.Helper()
	repo := metadata.NewMemoryStore().Namespace("test")
	return New(repo), repo
}

func TestPrefs_AbsentKeys(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	s, ok, err := p.String(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s)

	n, ok, err := p.Int64(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, n)

	set, ok, err := p.StringSet(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, set)
}

func TestPrefs_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p, repo := newPrefs(t)

	require.NoError(t, p.SetString(ctx, "name", "Azure Cloud"))
	require.NoError(t, p.SetInt(ctx, "count", 42))
	require.NoError(t, p.SetInt64(ctx, "expiry", 1700000000000))
	require.NoError(t, p.SetBool(ctx, "flag", true))
	require.NoError(t, p.SetStringSet(ctx, "perms", []string{"task:edit", "doc:view", "task:edit"}))

	s, _, _ := p.String(ctx, "name")
	assert.Equal(t, "Azure Cloud", s)
	n, _, _ := p.Int(ctx, "count")
	assert.Equal(t, 42, n)
	e, _, _ := p.Int64(ctx, "expiry")
	assert.Equal(t, int64(1700000000000), e)
	b, ok, _ := p.Bool(ctx, "flag")
	assert.True(t, ok)
	assert.True(t, b)
	set, _, _ := p.StringSet(ctx, "perms")
	assert.Equal(t, []string{"doc:view", "task:edit"}, set)

	raw, err := repo.Get(ctx, "expiry")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", string(raw), "ints are stored as decimal text")
}

func TestPrefs_Malformed(t *testing.T) {
	ctx := context.Background()
	p, repo := newPrefs(t)
	require.NoError(t, repo.Set(ctx, "n", []byte("twelve")))
	require.NoError(t, repo.Set(ctx, "set", []byte("{")))

	_, ok, err := p.Int(ctx, "n")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), "n")

	_, _, err = p.Bool(ctx, "n")
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, err = p.StringSet(ctx, "set")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestPrefs_IntOutOfRange(t *testing.T) {
	ctx := context.Background()
	p, repo := newPrefs(t)

	require.NoError(t, repo.Set(ctx, "huge", []byte("99999999999999999999")))
	_, ok, err := p.Int(ctx, "huge")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformed)

	wide := int64(math.MaxInt32) + 1
	require.NoError(t, p.SetInt64(ctx, "wide", wide))
	n, ok, err := p.Int(ctx, "wide")
	if strconv.IntSize == 32 {
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrMalformed)
	} else {
		require.NoError(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, wide, n)
	}

	n64, ok, err := p.Int64(ctx, "wide")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, wide, n64)
}

func TestPrefs_EmptyStringIsPresent(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	require.NoError(t, p.SetString(ctx, "access_token", ""))
	s, ok, err := p.String(ctx, "access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, s)
}

func TestPrefs_EditIsAtomic(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	err := p.Edit(ctx, func(e *Prefs) error {
		if err := e.SetString(ctx, "a", "1"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	_, ok, _ := p.String(ctx, "a")
	assert.False(t, ok, "aborted edit must not leak writes")

	require.NoError(t, p.Edit(ctx, func(e *Prefs) error {
		if err := e.SetString(ctx, "a", "1"); err != nil {
			return err
		}
		return e.SetInt(ctx, "b", 2)
	}))
	a, _, _ := p.String(ctx, "a")
	b, _, _ := p.Int(ctx, "b")
	assert.Equal(t, "1", a)
	assert.Equal(t, 2, b)
}

func TestPrefs_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)
	require.NoError(t, p.SetString(ctx, "a", "1"))
	require.NoError(t, p.SetString(ctx, "b", "2"))
	require.NoError(t, p.SetString(ctx, "c", "3"))

	require.NoError(t, p.Remove(ctx, "a", "b", "never-set"))
	_, ok, _ := p.String(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = p.String(ctx, "c")
	assert.True(t, ok)

	require.NoError(t, p.Clear(ctx))
	_, ok, _ = p.String(ctx, "c")
	assert.False(t, ok)
}
