// Package fallback runs an ordered list of strategies and keeps the first
// one that succeeds.
package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Tier is one strategy in a chain.
type Tier[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// ChainError reports every tier failure of an exhausted chain, in order.
type ChainError struct {
	Failures []TierFailure
}

// TierFailure pairs a tier name with its error.
type TierFailure struct {
	Tier string
	Err  error
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Tier, f.Err))
	}
	return "all tiers failed (" + strings.Join(parts, "; ") + ")"
}

// First tries each tier in order and returns the first successful value along
// with the name of the tier that produced it. A tier is only attempted when
// every earlier tier returned an error. Cancellation of ctx stops the chain.
func First[T any](ctx context.Context, log zerolog.Logger, tiers ...Tier[T]) (T, string, error) {
	var zero T
	chainErr := &ChainError{}

	for _, tier := range tiers {
		if err := ctx.Err(); err != nil {
			return zero, "", errors.Wrap(err, "fallback chain interrupted")
		}

		v, err := tier.Run(ctx)
		if err == nil {
			log.Debug().Str("tier", tier.Name).Msg("tier succeeded")
			return v, tier.Name, nil
		}

		log.Warn().Err(err).Str("tier", tier.Name).Msg("tier failed, trying next")
		chainErr.Failures = append(chainErr.Failures, TierFailure{Tier: tier.Name, Err: err})
	}

	if len(chainErr.Failures) == 0 {
		return zero, "", errors.New("fallback chain has no tiers")
	}
	return zero, "", chainErr
}
