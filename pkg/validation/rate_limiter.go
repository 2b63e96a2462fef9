package validation

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter per client
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	clients     map[string]*clientLimiter
	mu          sync.Mutex
	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// clientLimiter tracks rate limiting state for a single client
type clientLimiter struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter with specified limits
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		clients:     make(map[string]*clientLimiter),
		done:        make(chan struct{}),
	}

	rl.cleanupTick = time.NewTicker(window)
	go rl.cleanup()

	return rl
}

// Allow checks if a request should be allowed for the given client ID
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	limiter, exists := rl.clients[clientID]
	if !exists {
		now := time.Now()
		limiter = &clientLimiter{tokens: rl.maxRequests, lastRefill: now, lastSeen: now}
		rl.clients[clientID] = limiter
	}
	rl.mu.Unlock()

	return limiter.consume(rl.maxRequests, rl.window)
}

// Forget removes a client's bucket.
func (rl *RateLimiter) Forget(clientID string) {
	rl.mu.Lock()
	delete(rl.clients, clientID)
	rl.mu.Unlock()
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// consume attempts to consume a token from the client's bucket
func (cl *clientLimiter) consume(maxTokens int, window time.Duration) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	cl.lastSeen = now

	elapsed := now.Sub(cl.lastRefill)
	if elapsed > 0 && cl.tokens < maxTokens {
		tokensToAdd := int(float64(maxTokens) * float64(elapsed) / float64(window))
		if tokensToAdd > 0 {
			cl.tokens = min(cl.tokens+tokensToAdd, maxTokens)
			cl.lastRefill = now
		}
	}

	if cl.tokens > 0 {
		cl.tokens--
		return true
	}

	return false
}

// cleanup removes inactive clients to prevent memory leaks
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.removeInactiveClients(time.Now())
		case <-rl.done:
			return
		}
	}
}

// removeInactiveClients removes clients that haven't been seen for 2 windows
func (rl *RateLimiter) removeInactiveClients(now time.Time) {
	cutoff := now.Add(-2 * rl.window)

	rl.mu.Lock()
	for clientID, limiter := range rl.clients {
		limiter.mu.Lock()
		if limiter.lastSeen.Before(cutoff) {
			delete(rl.clients, clientID)
		}
		limiter.mu.Unlock()
	}
	rl.mu.Unlock()
}

// Close stops the rate limiter and cleans up resources
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
