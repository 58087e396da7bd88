package metadata

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// TestRedis_Contract needs a live server: REDIS_ADDR=localhost:6379 go test ./...
func TestRedis_Contract(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	runContract(t, func(t *testing.T) Factory {
		client := redis.NewClient(&redis.Options{Addr: addr})
		require.NoError(t, client.Ping(context.Background()).Err())
		t.Cleanup(func() { _ = client.Close() })

		return &prefixedFactory{inner: NewRedisFactory(client), prefix: uuid.NewString() + "/"}
	})
}

func TestRedisRepository_KeyLayout(t *testing.T) {
	r := NewRedisRepository(nil, "team_prefs")
	require.Equal(t, "ns:team_prefs:view_mode", r.key("view_mode"))
}

// prefixedFactory isolates test runs sharing one Redis database.
type prefixedFactory struct {
	inner  Factory
	prefix string
}

func (f *prefixedFactory) Namespace(name string) Repository {
	return f.inner.Namespace(f.prefix + name)
}
