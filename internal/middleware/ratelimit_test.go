package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryRateLimitStore_Check(t *testing.T) {
	store := NewMemoryRateLimitStore()
	defer store.Close()

	identifier := "192.168.1.1:anon"

	// First 3 requests within the window are allowed
	for i := 0; i < 3; i++ {
		result, err := store.Check(identifier, 3, time.Minute)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if !result.Allowed {
			t.Errorf("Request %d should be allowed", i+1)
		}
		if result.Remaining != 3-(i+1) {
			t.Errorf("Expected remaining %d, got %d", 3-(i+1), result.Remaining)
		}
	}

	// 4th request in the same window is denied
	result, err := store.Check(identifier, 3, time.Minute)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.Allowed {
		t.Error("4th request should be denied")
	}
	if result.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", result.Remaining)
	}

	// Different identifier has its own window
	other, err := store.Check("192.168.1.2:anon", 3, time.Minute)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !other.Allowed {
		t.Error("Different identifier should be allowed")
	}
}

func TestMemoryRateLimitStore_WindowReset(t *testing.T) {
	store := NewMemoryRateLimitStore()
	defer store.Close()

	now := time.Unix(1700000000, 0)
	store.now = func() time.Time { return now }

	identifier := "192.168.1.1:anon"
	window := time.Minute

	store.Check(identifier, 1, window)
	result, _ := store.Check(identifier, 1, window)
	if result.Allowed {
		t.Error("2nd request in window should be denied")
	}

	// Advancing past the window start opens a fresh window; earlier denied
	// requests still counted against the old one.
	now = now.Add(window)
	result, _ = store.Check(identifier, 1, window)
	if !result.Allowed {
		t.Error("Request in fresh window should be allowed")
	}
	if !result.ResetAt.Equal(now.Add(window)) {
		t.Errorf("Expected reset at %v, got %v", now.Add(window), result.ResetAt)
	}
}

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "x-forwarded-for first entry",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1, 10.0.0.2"},
			expected: "203.0.113.7",
		},
		{
			name:     "x-real-ip fallback",
			headers:  map[string]string{"X-Real-IP": "203.0.113.8"},
			expected: "203.0.113.8",
		},
		{
			name:     "cf-connecting-ip fallback",
			headers:  map[string]string{"CF-Connecting-IP": "203.0.113.9"},
			expected: "203.0.113.9",
		},
		{
			name:     "x-forwarded-for wins over others",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "203.0.113.8"},
			expected: "203.0.113.7",
		},
		{
			name:     "no headers",
			headers:  map[string]string{},
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/tips/intent", nil)
			for key, value := range tt.headers {
				r.Header.Set(key, value)
			}
			if got := ClientIdentifier(r); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	store := NewMemoryRateLimitStore()
	defer store.Close()

	handler := RateLimit(store, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/tips/intent", nil)
		r.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	// First 2 within the limit
	for i := 0; i < 2; i++ {
		if w := doRequest("203.0.113.7"); w.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	// 3rd is rejected with Retry-After and rate limit headers
	w := doRequest("203.0.113.7")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on 429")
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected X-RateLimit-Remaining 0, got %q", w.Header().Get("X-RateLimit-Remaining"))
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON error body, got Content-Type %q", ct)
	}

	// A different client is unaffected
	if w := doRequest("203.0.113.99"); w.Code != http.StatusOK {
		t.Errorf("Different client should not be limited, got %d", w.Code)
	}
}

func TestRateLimit_TokenNamespacing(t *testing.T) {
	store := NewMemoryRateLimitStore()
	defer store.Close()

	handler := RateLimit(store, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(token string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/tips/intent", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.7")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	// Same IP, different credentials: separate buckets
	if w := doRequest("client-a-token-xxxx"); w.Code != http.StatusOK {
		t.Errorf("First client: expected 200, got %d", w.Code)
	}
	if w := doRequest("client-b-token-yyyy"); w.Code != http.StatusOK {
		t.Errorf("Second client: expected 200, got %d", w.Code)
	}
	if w := doRequest("client-a-token-xxxx"); w.Code != http.StatusTooManyRequests {
		t.Errorf("First client repeat: expected 429, got %d", w.Code)
	}
}
