package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "attendance:qr:"
	defaultHoldTTL     = 10 * time.Second
	lockRetryInterval  = 20 * time.Millisecond
)

// ErrTokenBusy is returned when a token stays held by another scan for longer
// than a hold may last.
var ErrTokenBusy = errors.New("token is held by another scan")

// RedisStore shares tokens between server instances. Keys carry a TTL equal
// to the token lifetime, so Redis itself does the purging. A scan holds a
// token through a SET NX lock key that expires after holdTTL.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	holdTTL time.Duration
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, holdTTL: defaultHoldTTL}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

// lockKey lives outside prefix so Len does not count it.
func (s *RedisStore) lockKey(token string) string {
	return "lock:" + s.prefix + token
}

// hold acquires the lock key, retrying until the current holder lets go. The
// lock's own TTL bounds the wait.
func (s *RedisStore) hold(ctx context.Context, token string) error {
	deadline := time.Now().Add(s.holdTTL + lockRetryInterval)
	for {
		acquired, err := s.client.SetNX(ctx, s.lockKey(token), "1", s.holdTTL).Result()
		if err != nil {
			return fmt.Errorf("locking token: %w", err)
		}
		if acquired {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTokenBusy
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (s *RedisStore) unhold(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.lockKey(token)).Err(); err != nil {
		return fmt.Errorf("unlocking token: %w", err)
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, token string, info TokenInfo) error {
	ttl := info.ExpiresAt.Sub(info.IssuedAt)
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding token info: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, token string) (TokenInfo, bool, error) {
	if err := s.hold(ctx, token); err != nil {
		return TokenInfo{}, false, err
	}

	payload, err := s.client.GetDel(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return TokenInfo{}, false, s.unhold(ctx, token)
	}
	if err != nil {
		_ = s.unhold(ctx, token)
		return TokenInfo{}, false, fmt.Errorf("taking token: %w", err)
	}
	var info TokenInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		_ = s.unhold(ctx, token)
		return TokenInfo{}, false, fmt.Errorf("decoding token info: %w", err)
	}
	return info, true, nil
}

// Restore re-inserts the token with its remaining lifetime and drops the
// hold. NX keeps a concurrently re-issued value intact.
func (s *RedisStore) Restore(ctx context.Context, token string, info TokenInfo, now time.Time) error {
	remaining := info.ExpiresAt.Sub(now)
	if remaining > 0 {
		payload, err := json.Marshal(info)
		if err != nil {
			_ = s.unhold(ctx, token)
			return fmt.Errorf("encoding token info: %w", err)
		}
		if err := s.client.SetNX(ctx, s.key(token), payload, remaining).Err(); err != nil {
			_ = s.unhold(ctx, token)
			return fmt.Errorf("restoring token: %w", err)
		}
	}
	return s.unhold(ctx, token)
}

func (s *RedisStore) Release(ctx context.Context, token string) error {
	return s.unhold(ctx, token)
}

// PurgeExpired is a no-op: expiry is enforced by key TTLs.
func (s *RedisStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("counting tokens: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
