package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/clansession/internal/client/config"
	"github.com/dmitrijs2005/clansession/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func TestInitDatabase_CreatesMetadataTable(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "session.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PingContext(ctx))
	assert.True(t, tableExists(t, db, "goose_db_version"))
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db), "second run must be a no-op")
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestOpen_SQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StoreDriver: DriverSQLite, DatabasePath: filepath.Join(t.TempDir(), "s.db")}

	f, closer, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, f.Namespace(common.NamespaceAuthToken).Set(ctx, "access_token", []byte("a")))
	require.NoError(t, closer.Close())

	f, closer, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer closer.Close()

	v, err := f.Namespace(common.NamespaceAuthToken).Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)
}

func TestOpen_MemoryWithPassphrase(t *testing.T) {
	ctx := context.Background()
	f, closer, err := Open(ctx, &config.Config{StoreDriver: DriverMemory, Passphrase: "pw"})
	require.NoError(t, err)
	defer closer.Close()

	r := f.Namespace(common.NamespaceUserCache)
	require.NoError(t, r.Set(ctx, "user_info", []byte("{}")))
	v, err := r.Get(ctx, "user_info")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestOpen_SQLiteWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "s.db")

	_, closer, err := Open(ctx, &config.Config{DatabasePath: path, Passphrase: "one"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	_, _, err = Open(ctx, &config.Config{DatabasePath: path, Passphrase: "two"})
	require.ErrorIs(t, err, common.ErrWrongPassphrase)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StoreDriver: "etcd"})
	require.Error(t, err)
}
