package metadata

import (
	"context"
	"encoding/json"

	"metatagger/internal/cache"
	"metatagger/internal/logger"
)

// CachedProvider wraps a Provider with the persistent lookup cache.
// A cache hit bypasses the network entirely; a miss triggers exactly
// one (retried) lookup whose outcome, including an empty result, is
// written back before returning. Lookup errors are degraded to an
// empty track so a dead provider never aborts the pipeline.
//
// The store holds opaque JSON; encoding and decoding of Track happens
// here, on either side of it.
type CachedProvider struct {
	inner  Provider
	store  *cache.Store
	logger *logger.Logger
}

// NewCachedProvider wraps p with the given cache store.
func NewCachedProvider(p Provider, store *cache.Store, log *logger.Logger) *CachedProvider {
	return &CachedProvider{inner: p, store: store, logger: log}
}

func (c *CachedProvider) Name() string { return c.inner.Name() }

func (c *CachedProvider) Lookup(ctx context.Context, title, artist string) (Track, error) {
	raw, hit, err := c.store.Get(c.inner.Name(), title, artist)
	if err != nil {
		// A broken cache read shouldn't block the lookup itself.
		c.logger.Warn("cache read failed for %s: %v", c.inner.Name(), err)
	} else if hit {
		var track Track
		if err := json.Unmarshal(raw, &track); err != nil {
			c.logger.Warn("corrupt cache entry for %s, refreshing: %v", c.inner.Name(), err)
		} else {
			c.logger.Debug("%s cache hit: title=%q artist=%q", c.inner.Name(), title, artist)
			return track, nil
		}
	}

	track, err := c.inner.Lookup(ctx, title, artist)
	if err != nil {
		c.logger.Warn("%s lookup failed: %v", c.inner.Name(), err)
		track = Track{}
	}

	raw, err = json.Marshal(track)
	if err != nil {
		c.logger.Warn("cannot encode result for %s: %v", c.inner.Name(), err)
	} else if err := c.store.Put(c.inner.Name(), title, artist, raw); err != nil {
		c.logger.Warn("cache write failed for %s: %v", c.inner.Name(), err)
	}
	return track, nil
}
