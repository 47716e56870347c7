package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	count int
	until time.Time
}

// RateLimit caps requests per client IP to limit per window. Exhausted
// clients get a 429 with a Retry-After hint. Stale buckets are pruned inline
// once per window so the map cannot grow without bound.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var (
		mu        sync.Mutex
		buckets   = make(map[string]*bucket)
		nextPrune = time.Now().Add(per)
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			now := time.Now()

			mu.Lock()
			if now.After(nextPrune) {
				for k, b := range buckets {
					if now.After(b.until) {
						delete(buckets, k)
					}
				}
				nextPrune = now.Add(per)
			}
			b, ok := buckets[ip]
			if !ok || now.After(b.until) {
				b = &bucket{until: now.Add(per)}
				buckets[ip] = b
			}
			if b.count >= limit {
				retry := b.until
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(retry).Seconds())+1))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

// clientIPForRateLimit never returns an empty key; an unparseable peer
// address still gets its own bucket rather than sharing a global one.
func clientIPForRateLimit(r *http.Request) string {
	if ip := ClientIP(r); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
