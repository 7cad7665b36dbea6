package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
)

const (
	defaultMaxFailures = 5
	defaultOpenPeriod  = 30 * time.Second
)

// breakerGateway stops calling a provider that keeps failing. Declined payments are
// regular outcomes and do not count as failures.
type breakerGateway struct {
	next             Gateway
	authorizeBreaker *gobreaker.CircuitBreaker[Authorization]
	confirmBreaker   *gobreaker.CircuitBreaker[Outcome]
}

func newBreakerGateway(next Gateway, providerName string, maxFailures uint32, openPeriod time.Duration) *breakerGateway {
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	if openPeriod == 0 {
		openPeriod = defaultOpenPeriod
	}
	settings := func(operation string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        fmt.Sprintf("%s-%s", providerName, operation),
			MaxRequests: 1,
			Timeout:     openPeriod,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
		}
	}

	return &breakerGateway{
		next:             next,
		authorizeBreaker: gobreaker.NewCircuitBreaker[Authorization](settings("authorize")),
		confirmBreaker:   gobreaker.NewCircuitBreaker[Outcome](settings("confirm")),
	}
}

func (g *breakerGateway) CreateAuthorization(c context.Context, request AuthorizationRequest) (Authorization, error) {
	authorization, err := g.authorizeBreaker.Execute(func() (Authorization, error) {
		return g.next.CreateAuthorization(c, request)
	})
	return authorization, mapBreakerError(err)
}

func (g *breakerGateway) ConfirmAuthorization(c context.Context, authorization Authorization, instrument Instrument) (Outcome, error) {
	outcome, err := g.confirmBreaker.Execute(func() (Outcome, error) {
		return g.next.ConfirmAuthorization(c, authorization, instrument)
	})
	return outcome, mapBreakerError(err)
}

func mapBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return myerrors.NewUnavailableError(fmt.Errorf("payment provider temporarily unavailable: %w", err))
	}
	return err
}
