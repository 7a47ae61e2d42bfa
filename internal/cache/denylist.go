// Package cache wraps the Redis operations shared by both processes: the
// token revocation denylist and the per-client rate counters. Keys carry a
// short prefix so several deployments can share one Redis database.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records tokens invalidated before their natural expiry.
// Entries live exactly as long as the token would have, so the denylist
// garbage-collects itself and can never outgrow the set of live tokens.
type TokenDenylist struct {
	rdb *redis.Client
}

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{rdb: rdb}
}

// Revoke stores a denylist entry for the token with the given remaining
// lifetime. Non-positive lifetimes are not stored; the token expires on its
// own. The write completes before Revoke returns, so a revocation observed
// as successful is immediately effective for every verifier.
func (d *TokenDenylist) Revoke(ctx context.Context, rawToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, denyKey(rawToken), "1", ttl).Err()
}

// IsRevoked reports whether the exact token has been revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	n, err := d.rdb.Exists(ctx, denyKey(rawToken)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// denyKey hashes the token value so the denylist never stores usable
// credentials, and so key length stays fixed regardless of claim size.
func denyKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return "denylist:" + hex.EncodeToString(sum[:])
}
