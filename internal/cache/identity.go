package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tasktrack/tasktrack/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved identities.
	identityCachePrefix = "identity:user:"
	// defaultIdentityTTL applies when no TTL is configured.
	defaultIdentityTTL = time.Minute
)

// cachedIdentity represents an identity stored in Redis.
type cachedIdentity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// IdentityCache caches resolved identities keyed by user id.
// Users are never deleted, so entries are only retired by their TTL.
type IdentityCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewIdentityCache wraps c with the given entry TTL.
func NewIdentityCache(c *Cache, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{cache: c, ttl: ttl}
}

// GetIdentity returns the cached identity for userID.
// Returns nil, nil on a miss or a corrupt entry.
func (ic *IdentityCache) GetIdentity(ctx context.Context, userID string) (*model.Identity, error) {
	data, err := ic.cache.client.Get(ctx, identityKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}

	return decodeIdentity(data), nil
}

// SetIdentity caches identity until the TTL elapses.
func (ic *IdentityCache) SetIdentity(ctx context.Context, identity *model.Identity) error {
	data, err := encodeIdentity(identity)
	if err != nil {
		return err
	}
	return ic.cache.client.Set(ctx, identityKey(identity.UserID), data, ic.ttl).Err()
}

func identityKey(userID string) string {
	return identityCachePrefix + userID
}

func encodeIdentity(identity *model.Identity) ([]byte, error) {
	data, err := json.Marshal(cachedIdentity{UserID: identity.UserID, Email: identity.Email})
	if err != nil {
		return nil, fmt.Errorf("marshal identity: %w", err)
	}
	return data, nil
}

func decodeIdentity(data []byte) *model.Identity {
	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil || cached.UserID == "" {
		// Corrupted cache entry - treat as miss
		return nil
	}
	return &model.Identity{UserID: cached.UserID, Email: cached.Email}
}
