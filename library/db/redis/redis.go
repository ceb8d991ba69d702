// Package redis wraps the redis client used for session tokens and
// background task queues.
package redis

import (
	"context"

	"github.com/Laisky/errors/v2"
	gredis "github.com/Laisky/go-redis/v2"
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	rdb   *redis.Client
	utils *gredis.Utils
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	rdb := redis.NewClient(opt)
	rutils := gredis.NewRedisUtils(rdb)

	return &DB{
		rdb:   rdb,
		utils: rutils,
	}
}

// Ping checks whether the redis server is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis")
	}

	return nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.rdb.Close()
}
