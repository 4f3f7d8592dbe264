package simplybook

import (
	"context"
	"sync"
	"time"
)

// SimplyBook tokens live for an hour; refreshing after 50 minutes leaves
// headroom so an in-flight call never races the hard expiry.
const tokenTTL = 50 * time.Minute

// tokenCache holds one bearer token with its soft expiry. The cache is owned
// by the client instance; there is no ambient global. Refresh is lazy: the
// token is only renewed on the next use after expiry, never proactively.
// The mutex covers token and expiresAt; the client is shared across handler
// goroutines.
type tokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	fetch     func(ctx context.Context) (string, error)
}

// getOrRefresh returns the cached token if still fresh at now, otherwise
// fetches a new one and restarts the TTL. The lock is held across the fetch
// so concurrent callers trigger at most one refresh.
func (c *tokenCache) getOrRefresh(ctx context.Context, now time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && now.Before(c.expiresAt) {
		return c.token, nil
	}
	token, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.expiresAt = now.Add(tokenTTL)
	return token, nil
}

// invalidate drops the cached token so the next use fetches a fresh one.
func (c *tokenCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}
