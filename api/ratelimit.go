package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alumnihub/alumni-api/config"
)

// Limiter decides whether one more request for key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Name() string
}

// memoryIdleTTL is how long an untouched bucket is kept before it is swept
const memoryIdleTTL = 10 * time.Minute

type memoryBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// MemoryLimiter is a per-key token bucket kept in process memory. Buckets idle for
// longer than memoryIdleTTL are dropped on the next sweep.
type MemoryLimiter struct {
	rps       float64
	burst     int
	mu        sync.Mutex
	buckets   map[string]*memoryBucket
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter allows rps requests per second per key with bursts of burst
func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{rps: rps, burst: burst, buckets: map[string]*memoryBucket{}, now: time.Now}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= memoryIdleTTL {
		for k, b := range m.buckets {
			if now.Sub(b.seen) >= memoryIdleTTL {
				delete(m.buckets, k)
			}
		}
		m.lastSweep = now
	}

	b, ok := m.buckets[key]
	if !ok {
		b = &memoryBucket{lim: rate.NewLimiter(rate.Limit(m.rps), m.burst)}
		m.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1), nil
}

func (m *MemoryLimiter) Name() string { return "memory" }

// Len reports how many keys currently hold a bucket
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// RedisLimiter is a fixed-window counter shared by every api instance
type RedisLimiter struct {
	client  *redis.Client
	window  time.Duration
	allowed int64
	now     func() time.Time
}

// NewRedisLimiter allows rps*window+burst requests per key in each window
func NewRedisLimiter(client *redis.Client, rps float64, burst int, window time.Duration) *RedisLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RedisLimiter{
		client:  client,
		window:  window,
		allowed: int64(rps*window.Seconds()) + int64(burst),
		now:     time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	seconds := int64(l.window.Seconds())
	bucket := l.now().Unix() / seconds
	redisKey := fmt.Sprintf("rl:%s:%d", key, bucket)

	cnt, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		_ = l.client.Expire(ctx, redisKey, l.window+time.Second).Err()
	}
	return cnt <= l.allowed, nil
}

func (l *RedisLimiter) Name() string { return "redis" }

// NewLimiter picks the redis limiter when a client is configured
func NewLimiter(client *redis.Client, conf *config.Config) Limiter {
	if client == nil {
		return NewMemoryLimiter(conf.RateLimitRPS, conf.RateLimitBurst)
	}
	return NewRedisLimiter(client, conf.RateLimitRPS, conf.RateLimitBurst, time.Minute)
}

// ClientIP returns the address of the caller. With proxyHops trusted proxies in front
// of the api, the client is the entry that the outermost of them appended to
// X-Forwarded-For, counted from the right; entries further left are client supplied.
// With no trusted proxies the header is ignored and the peer address is used.
func ClientIP(r *http.Request, proxyHops int) string {
	if proxyHops > 0 {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			hops := strings.Split(fwd, ",")
			i := len(hops) - proxyHops
			if i < 0 {
				i = 0
			}
			if ip := strings.TrimSpace(hops[i]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limit with 429. When the limiter itself fails
// the request is let through and the failure logged.
func RateLimit(l Limiter, proxyHops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + ClientIP(r, proxyHops)
			ok, err := l.Allow(r.Context(), key)
			if err != nil {
				zap.S().Warnw("rate limiter unavailable", "limiter", l.Name(), "error", err)
				RateLimitDecisions.WithLabelValues(l.Name(), "error").Inc()
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				RateLimitDecisions.WithLabelValues(l.Name(), "rejected").Inc()
				w.Header().Set("Retry-After", "60")
				config.ErrorStatus("too many requests", http.StatusTooManyRequests, w, fmt.Errorf("rate limit exceeded"))
				return
			}
			RateLimitDecisions.WithLabelValues(l.Name(), "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
