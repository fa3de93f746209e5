package repository

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/assistralabs/assistra"
	"github.com/assistralabs/assistra/internal/domain"
)

// MemoryChallengeStore keeps signing nonces in process memory. Only suitable
// for a single instance; multi-instance deployments use redis. Expiry is
// checked explicitly so a stale challenge reports ChallengeExpired rather
// than ChallengeNotFound; the cache janitor garbage-collects afterwards.
type MemoryChallengeStore struct {
	mu sync.Mutex
	c  *cache.Cache
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		c: cache.New(domain.ChallengeTTL+time.Minute, time.Minute),
	}
}

func (s *MemoryChallengeStore) Put(ctx context.Context, family assistra.ChainFamily, address, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.c.Set(challengeKey(family, address), domain.Challenge{
		Family:    string(family),
		Address:   address,
		Nonce:     nonce,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, ttl+time.Minute)
	return nil
}

func (s *MemoryChallengeStore) Consume(ctx context.Context, family assistra.ChainFamily, address, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey(family, address)
	v, found := s.c.Get(key)
	if !found {
		return domain.ErrChallengeNotFound
	}
	ch := v.(domain.Challenge)
	if time.Now().After(ch.ExpiresAt) {
		s.c.Delete(key)
		return domain.ErrChallengeExpired
	}
	if ch.Nonce != nonce {
		return domain.ErrChallengeMismatch
	}
	s.c.Delete(key)
	return nil
}
