package metadata

import (
	"context"

	"metatagger/internal/logger"
)

// ChainProvider tries multiple providers in order, returning the first
// non-empty track. A provider error or empty result falls through to
// the next provider in the chain.
type ChainProvider struct {
	providers []Provider
	logger    *logger.Logger
}

// NewChainProvider creates a ChainProvider that queries providers in order.
func NewChainProvider(providers []Provider, log *logger.Logger) *ChainProvider {
	return &ChainProvider{providers: providers, logger: log}
}

func (c *ChainProvider) Name() string { return "chain" }

func (c *ChainProvider) Lookup(ctx context.Context, title, artist string) (Track, error) {
	for i, p := range c.providers {
		track, err := p.Lookup(ctx, title, artist)
		if err != nil {
			c.logger.Debug("provider %s failed: %v", p.Name(), err)
			continue
		}
		if !track.IsEmpty() {
			return track, nil
		}
		if i < len(c.providers)-1 {
			c.logger.Debug("no result from %s, trying %s", p.Name(), c.providers[i+1].Name())
		}
	}
	return Track{}, nil
}
