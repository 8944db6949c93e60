package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokedTokenRepository tracks access tokens revoked before their expiry.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevokedTokenRepository struct {
	client *redis.Client
	prefix string
}

// NewRevokedTokenRepository returns a Redis-backed implementation. Entries
// expire together with the token they revoke.
func NewRevokedTokenRepository(client *redis.Client) RevokedTokenRepository {
	return &redisRevokedTokenRepository{client: client, prefix: "fieldops:revoked:"}
}

func (r *redisRevokedTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+tokenID, "1", ttl).Err()
}

func (r *redisRevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client not configured")
	}
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
