package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

const tripThreshold = 5

// ErrSourceUnavailable is returned while a source's breaker is open.
var ErrSourceUnavailable = errors.New("metadata source unavailable")

// BreakerSourceRepository stops calling a metadata source after repeated
// consecutive failures and retries it once its backoff elapses.
type BreakerSourceRepository struct {
	inner   repositories.MetadataSourceRepository
	breaker *circuit.Breaker
}

// NewSourceRepository wraps inner with a circuit breaker.
func NewSourceRepository(inner repositories.MetadataSourceRepository) repositories.MetadataSourceRepository {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	return &BreakerSourceRepository{
		inner: inner,
		breaker: circuit.NewBreakerWithOptions(&circuit.Options{
			BackOff:    expBackoff,
			ShouldTrip: circuit.ThresholdTripFunc(tripThreshold),
		}),
	}
}

func (s *BreakerSourceRepository) Name() string      { return s.inner.Name() }
func (s *BreakerSourceRepository) Ecosystem() string { return s.inner.Ecosystem() }

func (s *BreakerSourceRepository) Query(
	ctx context.Context,
	name string,
	includePrerelease bool,
) ([]entities.PackageVersion, error) {
	if !s.breaker.Ready() {
		return nil, fmt.Errorf("%s: %w", s.inner.Name(), ErrSourceUnavailable)
	}

	var versions []entities.PackageVersion
	err := s.breaker.Call(func() error {
		var queryErr error
		versions, queryErr = s.inner.Query(ctx, name, includePrerelease)
		return queryErr
	}, 0)
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// Tripped reports whether the breaker is currently open.
func (s *BreakerSourceRepository) Tripped() bool { return s.breaker.Tripped() }
