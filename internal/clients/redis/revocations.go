package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const revokedKeyPrefix = "auth:revoked:"

// TokenRevocations remembers revoked token ids until the token would have
// expired anyway.
type TokenRevocations struct {
	log *logger.Logger
	rdb Commander
}

func NewTokenRevocations(log *logger.Logger, rdb Commander) *TokenRevocations {
	return &TokenRevocations{log: log.With("client", "RedisTokenRevocations"), rdb: rdb}
}

func (s *TokenRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.SetEx(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}
