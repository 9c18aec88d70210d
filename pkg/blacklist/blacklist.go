package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "propertyhub:revoked:session:"
	userKeyPrefix    = "propertyhub:revoked:user:"
)

// SessionBlacklist tracks revoked session tokens in Redis until they would have expired anyway.
type SessionBlacklist struct {
	redis *redis.Client
}

func NewSessionBlacklist(redisClient *redis.Client) *SessionBlacklist {
	return &SessionBlacklist{
		redis: redisClient,
	}
}

// RevokeSession marks a session id as revoked until expiresAt.
func (b *SessionBlacklist) RevokeSession(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)

	// already expired, the token cannot be used anyway
	if ttl <= 0 {
		return nil
	}

	if err := b.redis.Set(ctx, sessionKeyPrefix+sessionID.String(), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

func (b *SessionBlacklist) IsSessionRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	exists, err := b.redis.Exists(ctx, sessionKeyPrefix+sessionID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}

	return exists > 0, nil
}

// RevokeUser invalidates every token issued to the user before now.
// The marker expires after ttl, which should cover the longest token lifetime.
func (b *SessionBlacklist) RevokeUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	cutoff := time.Now().UnixMilli()
	if err := b.redis.Set(ctx, userKeyPrefix+userID.String(), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	return nil
}

// IsUserRevoked reports whether a token issued at issuedAt predates the user's cutoff.
func (b *SessionBlacklist) IsUserRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	cutoff, err := b.redis.Get(ctx, userKeyPrefix+userID.String()).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	return issuedAt.Before(time.UnixMilli(cutoff)), nil
}

// Ping verifies the Redis connection for readiness checks.
func (b *SessionBlacklist) Ping(ctx context.Context) error {
	return b.redis.Ping(ctx).Err()
}
