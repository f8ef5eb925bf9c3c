//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"dladmin/internal/platform/config"
	platformredis "dladmin/internal/platform/redis"
)

// RedisContainer backs the wizard session store and the lookup cache in
// integration tests. Client is built by the same constructor the server uses.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	*platformredis.Client
}

// NewRedisContainer starts redis and connects to it. The container is shared
// through Manager, so no cleanup is registered on t.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redis connection string: %v", err)
	}

	client, err := platformredis.New(ctx, config.RedisConfig{
		URL:          url,
		PoolSize:     8,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("connect to redis: %v", err)
	}

	return &RedisContainer{Container: container, URL: url, Client: client}
}

// Flush drops every session and cache key between tests.
func (r *RedisContainer) Flush(ctx context.Context) error {
	return r.FlushDB(ctx).Err()
}
