// Package ratelimit provides a fixed-window attempt limiter backed by
// memcached, shared across service instances. It guards the credential
// endpoints against brute forcing; it is not a general traffic shaper.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"
)

type Limiter struct {
	mc     *memcache.Client
	limit  uint64
	window time.Duration
}

func New(mc *memcache.Client, limit uint64, window time.Duration) *Limiter {
	return &Limiter{mc: mc, limit: limit, window: window}
}

// Allow counts an attempt for key and reports whether it is within the
// window budget. A nil limiter or an unreachable memcached fails open:
// authentication correctness never depends on the limiter.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.mc == nil {
		return true
	}

	// Raw identifiers (emails, wallet addresses) may exceed memcached key
	// limits or contain forbidden bytes; hash them into a fixed-size key.
	k := fmt.Sprintf("rl:%016x", xxh3.HashString(key))

	err := l.mc.Add(&memcache.Item{
		Key:        k,
		Value:      []byte("1"),
		Expiration: int32(l.window / time.Second),
	})
	if err == nil {
		return true
	}
	if err != memcache.ErrNotStored {
		return true
	}

	n, err := l.mc.Increment(k, 1)
	if err != nil {
		return true
	}
	return n <= l.limit
}
