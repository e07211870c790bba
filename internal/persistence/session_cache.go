package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/config"
)

// sessionCacheDialTimeout bounds the startup ping. Logins fail until Redis is
// reachable, but the API still starts so readiness can report it.
const sessionCacheDialTimeout = 3 * time.Second

var errSessionCacheMissing = errors.New("session cache not configured")

// SessionCache is the Redis connection holding logged-in account snapshots.
// It is also one of the readiness dependencies.
type SessionCache struct {
	client redis.UniversalClient
}

// NewSessionCache dials Redis and logs whether the first ping succeeded.
func NewSessionCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *SessionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, sessionCacheDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("session cache unreachable, logins will fail until it is up",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to session cache", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &SessionCache{client: client}
}

// Client is handed to the session store.
func (c *SessionCache) Client() redis.UniversalClient {
	if c == nil {
		return nil
	}
	return c.client
}

// Close releases the connection pool.
func (c *SessionCache) Close() {
	if c != nil && c.client != nil {
		_ = c.client.Close()
	}
}

// Ping backs the readiness check.
func (c *SessionCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errSessionCacheMissing
	}
	return c.client.Ping(ctx).Err()
}
