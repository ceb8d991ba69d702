package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/Laisky/errors/v2"

	redisLib "github.com/Laisky/files-manager/library/db/redis"
)

// newToken returns an opaque bearer token with 128 bits of entropy.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read rand")
	}

	return hex.EncodeToString(buf), nil
}

// IssueToken creates a session token for userID. A user may hold any
// number of concurrent tokens.
func (s *Users) IssueToken(ctx context.Context, userID string) (token string, err error) {
	if token, err = newToken(); err != nil {
		return "", errors.WithStack(err)
	}

	if err = s.sessions.SetToken(ctx, token, userID, s.tokenTTL); err != nil {
		return "", errors.Wrap(err, "store token")
	}

	return token, nil
}

// ResolveToken returns the user id the token was issued to, or
// redis.ErrTokenNotFound once the token expired or was revoked.
// Resolving does not extend the TTL.
func (s *Users) ResolveToken(ctx context.Context, token string) (userID string, err error) {
	if token == "" {
		return "", errors.WithStack(redisLib.ErrTokenNotFound)
	}

	return s.sessions.GetToken(ctx, token)
}

// RevokeToken deletes the token immediately. Revoking an unknown token
// returns redis.ErrTokenNotFound.
func (s *Users) RevokeToken(ctx context.Context, token string) error {
	if token == "" {
		return errors.WithStack(redisLib.ErrTokenNotFound)
	}

	return s.sessions.DelToken(ctx, token)
}
