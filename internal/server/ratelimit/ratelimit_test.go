package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTokenBucketBurstThenDeny(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		if !bucket.allow() {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if bucket.allow() {
		t.Error("request past burst capacity should be denied")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // one token per second

	for i := 0; i < 10; i++ {
		bucket.allow()
	}

	time.Sleep(1100 * time.Millisecond)

	if !bucket.allow() {
		t.Error("one token should have refilled")
	}
	if bucket.allow() {
		t.Error("refilled token already consumed, request should be denied")
	}
}

func TestTokenBucketStatus(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 5; i++ {
		bucket.allow()
	}

	remaining, resetTime := bucket.getStatus()
	if remaining != 5 {
		t.Errorf("remaining = %d, want 5", remaining)
	}
	if resetTime.Before(time.Now()) {
		t.Error("reset time of a depleted bucket should be in the future")
	}
}

func TestLimiterDefaultLimit(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/lint", "POST")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("info.Limit = %d, want 10", info.Limit)
		}
		if info.Remaining != 9-i {
			t.Errorf("info.Remaining = %d, want %d", info.Remaining, 9-i)
		}
	}

	allowed, info := limiter.Allow("10.0.0.1", "/lint", "POST")
	if allowed {
		t.Error("request past the limit should be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("info.Remaining = %d, want 0", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Error("denied request should carry a positive RetryAfter")
	}
}

func TestLimiterWhitelistBypasses(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/lint", "POST")
		if !allowed {
			t.Fatalf("whitelisted request %d should be allowed", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("whitelisted info.Limit = %d, want 0", info.Limit)
		}
	}
}

func TestLimiterBlacklistRefuses(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.0.2.7": true},
	})
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("192.0.2.7", "/lint", "POST"); allowed {
		t.Error("blacklisted client should be refused")
	}
}

func TestLimiterDisabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		if allowed, _ := limiter.Allow("10.0.0.1", "/lint", "POST"); !allowed {
			t.Fatalf("request %d should pass with limiting disabled", i+1)
		}
	}
}

func TestLimiterEndpointTiers(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/rules/reload", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/rules/reload", "POST")
		if !allowed {
			t.Fatalf("reload request %d should be allowed", i+1)
		}
		if info.Limit != 5 {
			t.Errorf("info.Limit = %d, want 5", info.Limit)
		}
	}
	if allowed, _ := limiter.Allow("10.0.0.1", "/rules/reload", "POST"); allowed {
		t.Error("reload past its tier limit should be denied")
	}

	// Other endpoints still run on the default limit.
	allowed, info := limiter.Allow("10.0.0.1", "/rules", "GET")
	if !allowed {
		t.Error("unconfigured endpoint should use the default limit")
	}
	if info.Limit != 1000 {
		t.Errorf("info.Limit = %d, want default 1000", info.Limit)
	}
}

func TestLimiterBurstBelowLimit(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/review", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("10.0.0.1", "/review", "POST"); !allowed {
			t.Fatalf("burst request %d should be allowed", i+1)
		}
	}
	if allowed, _ := limiter.Allow("10.0.0.1", "/review", "POST"); allowed {
		t.Error("request past burst should be denied even though the window limit is higher")
	}
}

func TestLimiterConcurrentClients(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("10.0.0.1", "/lint", "POST"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("allowed %d concurrent requests, want exactly 100", allowedCount)
	}
}

func TestLimiterCleanupKeepsActiveBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    10,
		DefaultWindow:   time.Minute,
		CleanupInterval: 100 * time.Millisecond,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		client := fmt.Sprintf("10.0.0.%d", i+1)
		if allowed, _ := limiter.Allow(client, "/lint", "POST"); !allowed {
			t.Fatalf("request from %s should be allowed", client)
		}
	}

	time.Sleep(150 * time.Millisecond)

	// Recently used buckets survive cleanup passes.
	for i := 0; i < 5; i++ {
		client := fmt.Sprintf("10.0.0.%d", i+1)
		if allowed, _ := limiter.Allow(client, "/lint", "POST"); !allowed {
			t.Errorf("request from %s should still be allowed after cleanup", client)
		}
	}
}

func TestNewLimiterNilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("10.0.0.1", "/lint", "POST")
	if !allowed {
		t.Error("request should be allowed under default config")
	}
	if info.Limit != 1000 {
		t.Errorf("info.Limit = %d, want default 1000", info.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/lint", Method: "POST", Limit: 60, Window: time.Minute},
		{Path: "/rules/", Method: "POST", Limit: 10, Window: time.Minute},
	}

	if ec := MatchEndpoint("/lint", "POST", configs); ec == nil || ec.Limit != 60 {
		t.Error("exact match should resolve /lint POST")
	}
	if ec := MatchEndpoint("/rules/reload", "POST", configs); ec == nil || ec.Limit != 10 {
		t.Error("prefix match should resolve /rules/reload POST")
	}
	if ec := MatchEndpoint("/lint", "GET", configs); ec != nil {
		t.Error("method mismatch should not match")
	}
	if ec := MatchEndpoint("/health", "GET", configs); ec == nil || ec.Limit != 0 {
		t.Error("health check should resolve to an unthrottled config")
	}
}
