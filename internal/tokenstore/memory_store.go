package tokenstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process map. Held tokens carry a channel
// that is closed when the holder restores or releases them.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]TokenInfo
	held   map[string]chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]TokenInfo),
		held:   make(map[string]chan struct{}),
	}
}

func (s *MemoryStore) Save(_ context.Context, token string, info TokenInfo) error {
	s.mu.Lock()
	s.tokens[token] = info
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Take(ctx context.Context, token string) (TokenInfo, bool, error) {
	for {
		s.mu.Lock()
		if done, busy := s.held[token]; busy {
			s.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return TokenInfo{}, false, ctx.Err()
			}
		}

		info, ok := s.tokens[token]
		if ok {
			delete(s.tokens, token)
			s.held[token] = make(chan struct{})
		}
		s.mu.Unlock()
		return info, ok, nil
	}
}

// Restore puts a taken token back unless it has expired in the meantime,
// then wakes any scan waiting on it.
func (s *MemoryStore) Restore(_ context.Context, token string, info TokenInfo, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !info.Expired(now) {
		if _, exists := s.tokens[token]; !exists {
			s.tokens[token] = info
		}
	}
	s.unhold(token)
	return nil
}

// Release drops the hold on a consumed or expired token.
func (s *MemoryStore) Release(_ context.Context, token string) error {
	s.mu.Lock()
	s.unhold(token)
	s.mu.Unlock()
	return nil
}

// unhold must be called with mu held.
func (s *MemoryStore) unhold(token string) {
	if done, ok := s.held[token]; ok {
		close(done)
		delete(s.held, token)
	}
}

func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for token, info := range s.tokens {
		if info.Expired(now) {
			delete(s.tokens, token)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens), nil
}
