// Package ratelimit throttles lint API traffic per client using token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// staleAfter is how long an idle bucket survives before cleanup reclaims it.
const staleAfter = time.Hour

// TokenBucket is a single client's token bucket. Tokens refill continuously
// at refillRate per second up to capacity.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	now := time.Now()
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastSeen:   now,
	}
}

// refillLocked credits tokens for the time elapsed since the last refill.
// Caller must hold tb.mu.
func (tb *TokenBucket) refillLocked(now time.Time) {
	credit := now.Sub(tb.lastRefill).Seconds() * tb.refillRate
	tb.tokens = min(float64(tb.capacity), tb.tokens+credit)
	tb.lastRefill = now
}

// allow consumes one token if available.
func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refillLocked(now)
	tb.lastSeen = now

	if tb.tokens < 1.0 {
		return false
	}
	tb.tokens -= 1.0
	return true
}

// getStatus reports remaining tokens and when the bucket will be full again,
// without consuming anything.
func (tb *TokenBucket) getStatus() (remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refillLocked(now)

	remaining = int(tb.tokens)
	resetTime = now
	if deficit := float64(tb.capacity) - tb.tokens; deficit > 0 {
		resetTime = now.Add(time.Duration(deficit / tb.refillRate * float64(time.Second)))
	}
	return remaining, resetTime
}

// idleSince reports the last time allow was called on this bucket.
func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastSeen
}

// Info describes the rate limit decision for a single request. The server
// translates it into RateLimit-* response headers.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter tracks one token bucket per client+endpoint+method combination.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*TokenBucket
	config  *Config

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a limiter from config; a nil config gets permissive
// defaults (1000 requests per minute per client).
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// Allow decides whether a request from clientID against endpoint+method may
// proceed. Whitelisted clients bypass limiting entirely; blacklisted clients
// are always refused.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	ec := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ec == nil {
		ec = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	// Limit <= 0 means unthrottled (health checks).
	if ec.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	bucket := l.bucketFor(clientID+":"+endpoint+":"+method, ec)

	allowed := bucket.allow()
	remaining, resetTime := bucket.getStatus()

	var retryAfter time.Duration
	if !allowed {
		if retryAfter = time.Until(resetTime); retryAfter < 0 {
			retryAfter = 0
		}
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      ec.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) bucketFor(key string, ec *EndpointConfig) *TokenBucket {
	l.mu.RLock()
	bucket, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return bucket
	}

	capacity := ec.Burst
	if capacity <= 0 {
		capacity = ec.Limit
	}
	refillRate := float64(ec.Limit) / ec.Window.Seconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.buckets[key]; ok {
		return existing
	}
	bucket = newTokenBucket(capacity, refillRate)
	l.buckets[key] = bucket
	return bucket
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.removeStale()
		case <-l.cleanupStop:
			return
		}
	}
}

// removeStale drops buckets that have been idle past staleAfter so the map
// does not grow without bound.
func (l *Limiter) removeStale() {
	cutoff := time.Now().Add(-staleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		if bucket.idleSince().Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop terminates the background cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
