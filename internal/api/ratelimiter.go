package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
	maxTrackedClients    = 10000
	overflowClientKey    = "overflow"
)

type rateLimiter interface {
	Allow(client string) bool
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// perClientLimiter keeps one token bucket per client address. Buckets idle for
// longer than limiterIdleTTL are dropped. Once maxClients buckets are live,
// new clients share a single overflow bucket.
type perClientLimiter struct {
	ratePerSecond rate.Limit
	burst         int
	maxClients    int
	now           func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) *perClientLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &perClientLimiter{
		ratePerSecond: rate.Limit(ratePerSecond),
		burst:         burst,
		maxClients:    maxTrackedClients,
		now:           time.Now,
		clients:       make(map[string]*clientLimiter),
	}
}

func (l *perClientLimiter) Allow(client string) bool {
	if l == nil {
		return true
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		l.sweep(now)
	}

	entry, ok := l.clients[client]
	if !ok && len(l.clients) >= l.maxClients {
		l.sweep(now)
		if len(l.clients) >= l.maxClients {
			client = overflowClientKey
			entry, ok = l.clients[client]
		}
	}
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.ratePerSecond, l.burst)}
		l.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *perClientLimiter) sweep(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func (l *perClientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// clientKey identifies the caller by the connection's remote host. The first
// X-Forwarded-For hop is used only when trustForwarded is set, since clients
// can write that header freely.
func clientKey(r *http.Request, trustForwarded bool) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); trustForwarded && forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rateLimitMiddleware(limiter rateLimiter, trustForwarded bool, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow(clientKey(r, trustForwarded)) {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
