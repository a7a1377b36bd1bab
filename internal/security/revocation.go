package security

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers logged-out session ids until their tokens expire.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type memoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() RevocationList {
	return &memoryRevocationList{revoked: make(map[string]time.Time), now: time.Now}
}

func (l *memoryRevocationList) Revoke(ctx context.Context, jti string, until time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, exp := range l.revoked {
		if !exp.After(now) {
			delete(l.revoked, id)
		}
	}
	l.revoked[jti] = until
	return nil
}

func (l *memoryRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.revoked[jti]
	return ok && exp.After(l.now()), nil
}

const revokedKeyPrefix = "auth:revoked:"

type redisRevocationList struct {
	client redis.Cmdable
}

func NewRedisRevocationList(client redis.Cmdable) RevocationList {
	return &redisRevocationList{client: client}
}

func (l *redisRevocationList) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (l *redisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
