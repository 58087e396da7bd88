package devserver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"users": [{"username": "li", "password": "pw"}],
			"teams": [{"sectId": 7, "sectName": "Iron Peak", "unreadCount": 4}],
			"require_captcha": true
		}`), 0o600))

		s, err := LoadSeed(path)
		require.NoError(t, err)
		assert.Equal(t, []SeedUser{{Username: "li", Password: "pw"}}, s.Users)
		require.Len(t, s.Teams, 1)
		assert.EqualValues(t, 7, s.Teams[0].SectID)
		assert.Equal(t, 4, s.Teams[0].UnreadCount)
		assert.True(t, s.RequireCaptcha)
	})

	t.Run("yaml uses json field names", func(t *testing.T) {
		path := filepath.Join(dir, "seed.yml")
		require.NoError(t, os.WriteFile(path, []byte("profile:\n  userId: 42\n  username: li\ntasks:\n  - taskId: 3\n    taskName: Forge\n    taskStatus: todo\n"), 0o600))

		s, err := LoadSeed(path)
		require.NoError(t, err)
		require.NotNil(t, s.Profile)
		assert.EqualValues(t, 42, s.Profile.UserID)
		require.Len(t, s.Tasks, 1)
		assert.Equal(t, "Forge", s.Tasks[0].TaskName)
	})

	t.Run("broken", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"users": 1}`), 0o600))
		_, err := LoadSeed(path)
		require.Error(t, err)
	})
}

func TestApply_AddsUsersAndReplacesTeams(t *testing.T) {
	b := NewBackend(WithHashCost(bcrypt.MinCost))
	b.AddUser("zhang", "x")
	require.NoError(t, b.Apply(&Seed{Users: []SeedUser{{Username: "li", Password: "pw"}}}))

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Len(t, b.users, 2)
	assert.Empty(t, b.teams)
	assert.NoError(t, bcrypt.CompareHashAndPassword(b.users["li"], []byte("pw")))
	assert.NotEqual(t, []byte("pw"), b.users["li"])
}

func TestApply_RejectsUnhashablePassword(t *testing.T) {
	b := NewBackend(WithHashCost(bcrypt.MinCost))
	long := strings.Repeat("x", 80)
	err := b.Apply(&Seed{Users: []SeedUser{{Username: "li", Password: long}}})
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}
