package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lucaswan/paperdesk/internal/config"
	"github.com/lucaswan/paperdesk/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ViewCache invalidates cached read views in Redis when membership or
// invitation state changes. It caches derived listings only, never roles:
// the access guard always reads the database directly.
//
// A nil or disabled ViewCache is safe to call; every method no-ops.
type ViewCache struct {
	client *redis.Client
}

// NewViewCache connects to Redis when enabled; otherwise returns a disabled
// cache. Connection failure downgrades to disabled rather than erroring.
func NewViewCache(cfg *config.RedisConfig) *ViewCache {
	if !cfg.Enabled {
		return &ViewCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Infof("[ViewCache] Redis unavailable, view caching disabled: %v", err)
		client.Close()
		return &ViewCache{}
	}

	return &ViewCache{client: client}
}

// Enabled reports whether a Redis connection is live.
func (c *ViewCache) Enabled() bool {
	return c != nil && c.client != nil
}

// InvalidateProjectUsers drops the cached member listing for a project.
func (c *ViewCache) InvalidateProjectUsers(projectID uint) {
	c.invalidate(fmt.Sprintf("views:project:%d:users", projectID))
}

// InvalidateUserInvitations drops the cached invitation listing for an email.
func (c *ViewCache) InvalidateUserInvitations(email string) {
	if email == "" {
		return
	}
	c.invalidate(fmt.Sprintf("views:user:%s:invitations", email))
}

func (c *ViewCache) invalidate(key string) {
	if !c.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("view cache invalidation failed")
	}
}

// Close releases the Redis connection.
func (c *ViewCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
