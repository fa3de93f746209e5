package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/assistralabs/assistra"
	"github.com/assistralabs/assistra/internal/domain"
)

// consumeScript performs the compare-and-delete as one atomic step on the
// server so two concurrent verification attempts can never both win.
// Returns 1 on success, 0 when missing/expired, 2 on nonce mismatch.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return 0
end
if v ~= ARGV[1] then
  return 2
end
redis.call("DEL", KEYS[1])
return 1
`)

// RedisChallengeStore keeps signing nonces in redis, using native per-key
// expiry for the challenge TTL. Suitable for multi-instance deployments.
type RedisChallengeStore struct {
	rdb *redis.Client
}

func NewRedisChallengeStore(rdb *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{rdb: rdb}
}

func challengeKey(family assistra.ChainFamily, address string) string {
	return fmt.Sprintf("challenge:%s:%s", family, address)
}

func (s *RedisChallengeStore) Put(ctx context.Context, family assistra.ChainFamily, address, nonce string, ttl time.Duration) error {
	return s.rdb.Set(ctx, challengeKey(family, address), nonce, ttl).Err()
}

func (s *RedisChallengeStore) Consume(ctx context.Context, family assistra.ChainFamily, address, nonce string) error {
	result, err := consumeScript.Run(ctx, s.rdb, []string{challengeKey(family, address)}, nonce).Int64()
	if err != nil {
		return err
	}
	switch result {
	case 1:
		return nil
	case 2:
		return domain.ErrChallengeMismatch
	default:
		return domain.ErrChallengeNotFound
	}
}
