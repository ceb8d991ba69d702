package redis

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound means the token does not exist or already expired.
// An unreachable redis server is reported as a distinct wrapped error,
// never as ErrTokenNotFound.
var ErrTokenNotFound = errors.New("token not found")

// SetToken stores token -> userID with the given TTL. Expiry is enforced
// by redis, there is no application-side sweeper.
func (db *DB) SetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := db.rdb.Set(ctx, KeyPrefixAuth+token, userID, ttl).Err(); err != nil {
		return errors.Wrap(err, "set token")
	}

	return nil
}

// GetToken resolves a token to the user id it was issued to.
// Reading does not refresh the TTL.
func (db *DB) GetToken(ctx context.Context, token string) (userID string, err error) {
	userID, err = db.rdb.Get(ctx, KeyPrefixAuth+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.WithStack(ErrTokenNotFound)
		}
		return "", errors.Wrap(err, "get token")
	}

	return userID, nil
}

// DelToken removes a token mapping. The second removal of the same token
// returns ErrTokenNotFound.
func (db *DB) DelToken(ctx context.Context, token string) error {
	deleted, err := db.rdb.Del(ctx, KeyPrefixAuth+token).Result()
	if err != nil {
		return errors.Wrap(err, "del token")
	}
	if deleted == 0 {
		return errors.WithStack(ErrTokenNotFound)
	}

	return nil
}
