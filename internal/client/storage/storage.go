// Package storage opens the key/value backend selected by configuration and
// prepares it for the session stores.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clansession/internal/client/config"
	"github.com/dmitrijs2005/clansession/internal/client/migrations"
	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clansession/internal/filex"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	_ "modernc.org/sqlite"
)

// Supported values of config.Config.StoreDriver.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the metadata factory described by cfg. The returned closer
// releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (metadata.Factory, io.Closer, error) {
	var (
		factory metadata.Factory
		closer  io.Closer
	)

	switch cfg.StoreDriver {
	case "", DriverSQLite:
		db, err := InitDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite init: %w", err)
		}
		factory, closer = metadata.NewSQLiteFactory(db), db
	case DriverMemory:
		factory, closer = metadata.NewMemoryStore(), nopCloser{}
	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		factory, closer = metadata.NewRedisFactory(client), client
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.Passphrase == "" {
		return factory, closer, nil
	}

	enc, err := metadata.NewEncryptedFactory(ctx, factory, []byte(cfg.Passphrase))
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return enc, closer, nil
}
