package team

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clansession/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_CoalescesToLatest(t *testing.T) {
	ctx := context.Background()
	m := New(nil, metadata.NewMemoryStore().Namespace("t"), logging.Discard())
	require.NoError(t, m.Init(ctx))

	ch, cancel := m.Subscribe()

	require.NoError(t, m.SetViewMode(ctx, ViewGlobal))
	require.NoError(t, m.SetViewMode(ctx, ViewSingle))
	require.NoError(t, m.SetViewMode(ctx, ViewGlobal))

	st := <-ch
	assert.Equal(t, ViewGlobal, st.ViewMode)
	select {
	case extra := <-ch:
		t.Fatalf("expected a single pending state, got %+v", extra)
	default:
	}

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestSubscribe_InitialState(t *testing.T) {
	m := New(nil, metadata.NewMemoryStore().Namespace("t"), logging.Discard())
	ch, cancel := m.Subscribe()
	defer cancel()

	st := <-ch
	assert.Nil(t, st.Current)
	assert.Empty(t, st.Teams)
	assert.Equal(t, ViewSingle, st.ViewMode)
}

func TestSelectCurrent(t *testing.T) {
	teams := []Team{{SectID: 1, IsDefault: true}, {SectID: 2, IsCurrent: true}, {SectID: 3}}

	assert.Equal(t, int64(3), selectCurrent(teams, 3, true).SectID)
	assert.Equal(t, int64(2), selectCurrent(teams, 9, true).SectID)
	assert.Equal(t, int64(2), selectCurrent(teams, 0, false).SectID)
	assert.Nil(t, selectCurrent([]Team{{SectID: 1}}, 0, false))
}
