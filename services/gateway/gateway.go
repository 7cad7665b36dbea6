package gateway

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mymetrics"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
)

//go:generate mockgen -source=gateway.go -package gateway -destination gateway_mock.go Gateway
type Gateway interface {
	// CreateAuthorization obtains a handle for exactly the requested amount
	CreateAuthorization(c context.Context, request AuthorizationRequest) (Authorization, error)
	// ConfirmAuthorization charges the instrument. A declined instrument is a Failed outcome,
	// not an error. An error means the outcome is unknown.
	ConfirmAuthorization(c context.Context, authorization Authorization, instrument Instrument) (Outcome, error)
}

// New builds the gateway of the configured provider, protected by a circuit breaker and instrumented
func New(cfg Config, vault myvault.VaultReader[Token], nower mytime.Nower, registerer prometheus.Registerer) (Gateway, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderStripe
	}
	logger := mylog.New("gateway")
	auth := newAuthenticator(cfg.Provider, cfg.APIKey, vault, nower, logger)

	var provider Gateway
	switch cfg.Provider {
	case ProviderStripe:
		provider = newStripeGateway(NewStripePayer(), auth, logger)
	case ProviderMollie:
		payer, err := NewMolliePayer()
		if err != nil {
			return nil, err
		}
		provider = newMollieGateway(payer, auth, cfg.MollieProfileID, cfg.MollieTestMode, logger)
	default:
		return nil, fmt.Errorf("unsupported payment provider '%s'", cfg.Provider)
	}

	return newInstrumentedGateway(
		newBreakerGateway(provider, cfg.Provider, cfg.BreakerMaxFailures, cfg.BreakerOpenPeriod),
		cfg.Provider,
		mymetrics.NewGatewayMetrics(registerer),
	), nil
}
