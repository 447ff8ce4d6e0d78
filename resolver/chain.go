package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Chain tries each Resolver in turn, returning the first hit and falling
// through to the next strategy on ErrNotFound. This is protox's realization
// of original_source's ChainFileResolver: IncludeResolver roots first, any
// --descriptor-set-in files next, WellKnown last.
type Chain struct {
	resolvers []Resolver
	logger    *zap.Logger
}

// NewChain builds a Chain over resolvers, tried in the given order. A nil
// logger defaults to zap.NewNop().
func NewChain(logger *zap.Logger, resolvers ...Resolver) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{resolvers: resolvers, logger: logger}
}

func (c *Chain) Open(ctx context.Context, name string) (*File, error) {
	for i, r := range c.resolvers {
		f, err := r.Open(ctx, name)
		if err == nil {
			c.logger.Debug("resolved file", zap.String("name", name), zap.Int("resolver", i))
			return f, nil
		}
		if errors.Is(err, ErrNotFound) {
			c.logger.Debug("resolver miss", zap.String("name", name), zap.Int("resolver", i))
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}
