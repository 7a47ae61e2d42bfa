package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments a client's counter and, on the first hit of a window,
// starts its expiry. Running both inside one script keeps increment-and-set-ttl
// atomic across concurrent requests for the same key; a read-increment-write
// sequence from Go would race. The script also returns the remaining window
// so the middleware can emit an accurate Retry-After.
var hitScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('EXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('TTL', KEYS[1])
	if ttl < 0 then
		redis.call('EXPIRE', KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return { count, ttl }
`)

// RateCounter keeps fixed-window request counters per client identity.
// Counters are purely additive and disappear only via key expiry.
type RateCounter struct {
	rdb    *redis.Client
	prefix string
}

func NewRateCounter(rdb *redis.Client) *RateCounter {
	return &RateCounter{rdb: rdb, prefix: "rl"}
}

// Hit atomically increments the counter for a client key and returns the
// post-increment count plus the time left in the current window.
func (r *RateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	vals, err := hitScript.Run(ctx, r.rdb, []string{r.prefix + ":" + key}, secs).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, redis.Nil
	}
	return vals[0], time.Duration(vals[1]) * time.Second, nil
}
