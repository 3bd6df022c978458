package principal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a role change can go unnoticed without Invalidate.
const DefaultCacheTTL = 5 * time.Minute

// RedisCache stores principals as JSON under "principal:{kind}:{email}".
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed Cache. A non-positive ttl selects DefaultCacheTTL.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if client == nil {
		panic("principal: redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

type cacheEntry struct {
	Kind       Kind      `json:"kind"`
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id,omitempty"`
	BusinessID uuid.UUID `json:"business_id,omitempty"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

func cacheKey(kind Kind, email string) string {
	return "principal:" + string(kind) + ":" + email
}

func (c *RedisCache) Get(ctx context.Context, kind Kind, email string) (Principal, error) {
	data, err := c.client.Get(ctx, cacheKey(kind, email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Principal{}, ErrCacheMiss
		}
		return Principal{}, err
	}

	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return Principal{}, err
	}
	return e.principal(), nil
}

func (c *RedisCache) Set(ctx context.Context, p Principal) error {
	data, err := json.Marshal(newCacheEntry(p))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(p.Kind, p.Email()), data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, kind Kind, email string) error {
	return c.client.Del(ctx, cacheKey(kind, email)).Err()
}

func newCacheEntry(p Principal) cacheEntry {
	e := cacheEntry{Kind: p.Kind, ID: p.ID(), Email: p.Email(), Role: p.Role()}
	switch {
	case p.Owner != nil:
		e.Name, e.CreatedAt = p.Owner.Name, p.Owner.CreatedAt
	case p.Employee != nil:
		e.Name, e.CreatedAt = p.Employee.Name, p.Employee.CreatedAt
		e.OwnerID, e.BusinessID = p.Employee.OwnerID, p.Employee.BusinessID
	}
	return e
}

func (e cacheEntry) principal() Principal {
	if e.Kind == KindEmployee {
		return FromEmployee(&Employee{
			ID:         e.ID,
			OwnerID:    e.OwnerID,
			BusinessID: e.BusinessID,
			Email:      e.Email,
			Name:       e.Name,
			Role:       e.Role,
			CreatedAt:  e.CreatedAt,
		})
	}
	return FromOwner(&Owner{
		ID:        e.ID,
		Email:     e.Email,
		Name:      e.Name,
		Role:      e.Role,
		CreatedAt: e.CreatedAt,
	})
}
