package gateway

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sony/gobreaker/v2"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/logger"
)

// BreakerSettings configures the circuit breaker shared by both gateways.
type BreakerSettings struct {
	// ConsecutiveFailures opens the circuit once reached.
	ConsecutiveFailures uint32
	// OpenTimeout is the cooldown before the breaker goes half-open.
	OpenTimeout time.Duration
	// HalfOpenMaxCalls limits trial calls while half-open.
	HalfOpenMaxCalls uint32
}

func newBreaker(name string, s BreakerSettings) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenMaxCalls,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// A downstream that answers with a business error is healthy.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrNotFound) ||
				errors.Is(err, domain.ErrValidation)
		},
	})
}

// classify maps breaker and timeout failures onto the dependency error the
// orchestrator understands; everything else passes through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return dependencyErr("circuit open", err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return dependencyErr("timeout", err)
	}
	return err
}

func dependencyErr(reason string, err error) error {
	return errors.Join(domain.ErrDependencyUnavailable, errors.New(reason), err)
}

// breakerTransport decorates a TransportGateway with a circuit breaker.
// Lookups propagate dependency failures; SetStatus additionally performs one
// short synchronous retry because it is the last write of a transition and
// callers do not retry it themselves.
type breakerTransport struct {
	next TransportGateway
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerTransportGateway(next TransportGateway, s BreakerSettings) TransportGateway {
	return &breakerTransport{next: next, cb: newBreaker("transport", s)}
}

func (b *breakerTransport) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.next.GetVehicle(ctx, id)
	})
	if err != nil {
		return nil, classify(err)
	}
	return result.(*domain.Vehicle), nil
}

func (b *breakerTransport) ResolveStatusID(ctx context.Context, name string) (int64, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.next.ResolveStatusID(ctx, name)
	})
	if err != nil {
		return 0, classify(err)
	}
	return result.(int64), nil
}

func (b *breakerTransport) SetStatus(ctx context.Context, vehicleID int64, status string) error {
	const retryDelay = 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		_, err := b.cb.Execute(func() (any, error) {
			return nil, b.next.SetStatus(ctx, vehicleID, status)
		})
		if err == nil {
			return nil
		}
		lastErr = classify(err)
		// No point retrying against an open circuit.
		if errors.Is(lastErr, domain.ErrDependencyUnavailable) {
			break
		}
		select {
		case <-ctx.Done():
			return classify(ctx.Err())
		case <-time.After(retryDelay):
		}
	}
	return lastErr
}

func (b *breakerTransport) SetCoordinates(ctx context.Context, vehicleID int64, lat, lng float64) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.SetCoordinates(ctx, vehicleID, lat, lng)
	})
	return classify(err)
}

// breakerAccount decorates an AccountGateway. GetAccount propagates
// dependency failures; ResolveCityID degrades to the UnknownCityID sentinel
// because city resolution only enriches responses.
type breakerAccount struct {
	next AccountGateway
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerAccountGateway(next AccountGateway, s BreakerSettings) AccountGateway {
	return &breakerAccount{next: next, cb: newBreaker("account", s)}
}

func (b *breakerAccount) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.next.GetAccount(ctx, id)
	})
	if err != nil {
		return nil, classify(err)
	}
	return result.(*domain.Account), nil
}

func (b *breakerAccount) ResolveCityID(ctx context.Context, name string) (int64, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.next.ResolveCityID(ctx, name)
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrDependencyUnavailable) {
			logger.Warn("City resolution degraded to sentinel", "city", name, "error", err)
			return UnknownCityID, nil
		}
		return 0, err
	}
	return result.(int64), nil
}
