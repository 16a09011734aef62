// Package rdx wraps the Redis client used as a shared cache between server
// instances.
package rdx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Cache struct {
	rdb *redis.Client
	log *logrus.Entry
}

func New(cfg Config) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{rdb: rdb, log: logrus.WithField("component", "redis")}
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.log.WithError(err).Warn("PING failed")
		return err
	}
	c.log.Debug("PING ok")
	return nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

// SetNX stores key with a TTL only if it does not exist yet.
func (c *Cache) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("SETNX failed")
		return false, err
	}
	return ok, nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		c.log.WithError(err).WithField("key", key).Warn("EXISTS failed")
		return false, err
	}
	return n == 1, nil
}
