package keyfetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
)

// cachedAnchors is one immutable snapshot plus its fetch time.
type cachedAnchors struct {
	anchors   callbacksig.TrustAnchorSet
	fetchedAt time.Time
}

// Cache adds TTL-based caching on top of another TrustAnchorSource.
//
// Reads are lock-free against an atomic snapshot; at most one goroutine
// refreshes at a time and the rest keep serving the previous snapshot.
// When a refresh fails and a previous snapshot exists, the stale snapshot
// is returned instead of the error: a temporarily unreachable key
// endpoint must not take callback verification down with it.
type Cache struct {
	upstream callbacksig.TrustAnchorSource
	ttl      time.Duration
	logger   *slog.Logger

	snapshot atomic.Pointer[cachedAnchors]

	// refreshMu serializes refreshes so a burst of callbacks after expiry
	// produces one upstream fetch, not one per request.
	refreshMu sync.Mutex

	// now is replaced in tests.
	now func() time.Time
}

// NewCache wraps upstream with a TTL cache.
func NewCache(upstream callbacksig.TrustAnchorSource, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if upstream == nil {
		return nil, NewConfigError("upstream source cannot be nil")
	}
	if ttl <= 0 {
		return nil, NewConfigError("cache TTL must be positive")
	}
	if logger == nil {
		return nil, NewConfigError("logger cannot be nil")
	}

	return &Cache{
		upstream: upstream,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// TrustAnchors implements callbacksig.TrustAnchorSource.
func (c *Cache) TrustAnchors(ctx context.Context) (callbacksig.TrustAnchorSet, error) {
	if snap := c.snapshot.Load(); snap != nil && c.now().Sub(snap.fetchedAt) < c.ttl {
		return snap.anchors, nil
	}
	return c.refresh(ctx)
}

// ForceRefresh discards the current snapshot's freshness and fetches from
// upstream. Callers invoke it when a callback is rejected with an
// untrusted intermediate key, in case the issuer has rotated root keys
// since the last fetch.
func (c *Cache) ForceRefresh(ctx context.Context) (callbacksig.TrustAnchorSet, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.fetchLocked(ctx)
}

func (c *Cache) refresh(ctx context.Context) (callbacksig.TrustAnchorSet, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// another goroutine may have refreshed while we waited for the lock
	if snap := c.snapshot.Load(); snap != nil && c.now().Sub(snap.fetchedAt) < c.ttl {
		return snap.anchors, nil
	}
	return c.fetchLocked(ctx)
}

func (c *Cache) fetchLocked(ctx context.Context) (callbacksig.TrustAnchorSet, error) {
	anchors, err := c.upstream.TrustAnchors(ctx)
	if err != nil {
		if snap := c.snapshot.Load(); snap != nil {
			c.logger.Warn("trust-anchor refresh failed, serving stale snapshot",
				slog.String("error", err.Error()),
				slog.Time("fetched_at", snap.fetchedAt))
			return snap.anchors, nil
		}
		return nil, err
	}

	c.snapshot.Store(&cachedAnchors{anchors: anchors, fetchedAt: c.now()})
	c.logger.Debug("trust-anchor snapshot refreshed", slog.Int("anchors", len(anchors)))

	return anchors, nil
}
