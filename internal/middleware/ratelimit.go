package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitResult reports the outcome of a rate limit check
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitStore counts requests per identifier within fixed windows. The
// in-memory store below is per-instance; a shared store can be swapped in
// behind this interface when the service runs on multiple instances.
type RateLimitStore interface {
	Check(identifier string, limit int, window time.Duration) (*RateLimitResult, error)
}

// windowEntry tracks one identifier's count within its current window
type windowEntry struct {
	count       int
	windowStart time.Time
}

// MemoryRateLimitStore is a fixed-window in-memory rate limit store
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	done    chan struct{}
	now     func() time.Time
}

// NewMemoryRateLimitStore creates a new in-memory store and starts its
// background sweep of expired windows.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	s := &MemoryRateLimitStore{
		entries: make(map[string]*windowEntry),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	go s.sweep()

	return s
}

// Check counts a request against the identifier's current window. The
// request is counted even when denied; a client that keeps hammering a
// full window never gets through early.
func (s *MemoryRateLimitStore) Check(identifier string, limit int, window time.Duration) (*RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, exists := s.entries[identifier]
	if !exists || now.Sub(entry.windowStart) >= window {
		entry = &windowEntry{windowStart: now}
		s.entries[identifier] = entry
	}

	entry.count++

	remaining := limit - entry.count
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   entry.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   entry.windowStart.Add(window),
	}, nil
}

// Close stops the background sweep
func (s *MemoryRateLimitStore) Close() {
	close(s.done)
}

// sweep removes entries whose windows are long expired. Entries are also
// reset lazily on Check, so the sweep only bounds memory for identifiers
// that stop sending requests.
func (s *MemoryRateLimitStore) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			cutoff := s.now().Add(-10 * time.Minute)
			for identifier, entry := range s.entries {
				if entry.windowStart.Before(cutoff) {
					delete(s.entries, identifier)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// ClientIdentifier derives a rate limit key from proxy forwarding headers,
// falling back to "unknown" so clients behind misconfigured proxies share
// one bucket instead of bypassing the limit.
func ClientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the originating client
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if cf := r.Header.Get("CF-Connecting-IP"); cf != "" {
		return strings.TrimSpace(cf)
	}
	return "unknown"
}

// tokenPrefix namespaces rate limit buckets by caller credential so
// distinct API clients behind one proxy do not share a bucket.
func tokenPrefix(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "anon"
	}
	if len(token) > 10 {
		token = token[:10]
	}
	return token
}

// RateLimit enforces a fixed-window request limit per client. Denied
// requests get a 429 with Retry-After; every response carries the
// X-RateLimit headers. A store failure lets the request through rather
// than taking payments down with the limiter.
func RateLimit(store RateLimitStore, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := fmt.Sprintf("%s:%s", ClientIdentifier(r), tokenPrefix(r))

			result, err := store.Check(identifier, limit, window)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(time.Until(result.ResetAt).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
