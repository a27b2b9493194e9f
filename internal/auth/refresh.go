package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// refreshKeyPrefix namespaces refresh tokens in the shared keyspace.
const refreshKeyPrefix = "itsd:refresh:"

// ErrRefreshTokenNotFound is returned for unknown, expired or revoked
// refresh tokens.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenStore persists refresh tokens server-side. Expiry is enforced
// by the store: a looked-up token past its TTL behaves as absent, and
// revocation removes it atomically.
type RefreshTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// RedisRefreshTokenStore keeps refresh tokens in Redis with a TTL.
type RedisRefreshTokenStore struct {
	client *redis.Client
}

// NewRedisRefreshTokenStore builds the store.
func NewRedisRefreshTokenStore(client *redis.Client) *RedisRefreshTokenStore {
	return &RedisRefreshTokenStore{client: client}
}

func (s *RedisRefreshTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKeyPrefix+token, userID, ttl).Err()
}

func (s *RedisRefreshTokenStore) Lookup(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRefreshTokenNotFound
	}
	return userID, err
}

func (s *RedisRefreshTokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKeyPrefix+token).Err()
}

// MemoryRefreshTokenStore is the redis-less fallback used in development
// and tests.
type MemoryRefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

type memoryToken struct {
	userID    string
	expiresAt time.Time
}

// NewMemoryRefreshTokenStore builds an empty store.
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{tokens: make(map[string]memoryToken), now: time.Now}
}

func (s *MemoryRefreshTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryToken{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshTokenStore) Lookup(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok {
		return "", ErrRefreshTokenNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return "", ErrRefreshTokenNotFound
	}
	return entry.userID, nil
}

func (s *MemoryRefreshTokenStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

var (
	_ RefreshTokenStore = (*RedisRefreshTokenStore)(nil)
	_ RefreshTokenStore = (*MemoryRefreshTokenStore)(nil)
)
