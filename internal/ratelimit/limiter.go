package ratelimit

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Keyed hands out one token bucket per key. Buckets idle for longer than
// the eviction window are dropped and start full again.
type Keyed struct {
	mu      sync.Mutex
	every   time.Duration
	burst   int
	buckets *cache.Cache
}

// NewKeyed allows perMinute events per key, in bursts of up to burst.
func NewKeyed(perMinute, burst int) *Keyed {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}

	idle := 10 * time.Minute
	return &Keyed{
		every:   time.Minute / time.Duration(perMinute),
		burst:   burst,
		buckets: cache.New(idle, idle),
	}
}

func (k *Keyed) Allow(key string) bool {
	return k.limiter(key).Allow()
}

func (k *Keyed) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if v, ok := k.buckets.Get(key); ok {
		if l, ok := v.(*rate.Limiter); ok {
			k.buckets.SetDefault(key, l)
			return l
		}
	}

	l := rate.NewLimiter(rate.Every(k.every), k.burst)
	k.buckets.SetDefault(key, l)
	return l
}
