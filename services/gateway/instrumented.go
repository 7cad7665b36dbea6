package gateway

import (
	"context"
	"time"

	"github.com/MarcGrol/shopcheckout/lib/mymetrics"
)

type instrumentedGateway struct {
	next         Gateway
	providerName string
	metrics      *mymetrics.GatewayMetrics
}

func newInstrumentedGateway(next Gateway, providerName string, metrics *mymetrics.GatewayMetrics) *instrumentedGateway {
	return &instrumentedGateway{
		next:         next,
		providerName: providerName,
		metrics:      metrics,
	}
}

func (g *instrumentedGateway) CreateAuthorization(c context.Context, request AuthorizationRequest) (Authorization, error) {
	start := time.Now()
	authorization, err := g.next.CreateAuthorization(c, request)
	g.observe("authorize", start, resultOf(err, true))
	return authorization, err
}

func (g *instrumentedGateway) ConfirmAuthorization(c context.Context, authorization Authorization, instrument Instrument) (Outcome, error) {
	start := time.Now()
	outcome, err := g.next.ConfirmAuthorization(c, authorization, instrument)
	g.observe("confirm", start, resultOf(err, outcome.IsCaptured()))
	return outcome, err
}

func (g *instrumentedGateway) observe(operation string, start time.Time, result string) {
	g.metrics.Calls.WithLabelValues(g.providerName, operation, result).Inc()
	g.metrics.LatencyMS.WithLabelValues(g.providerName, operation).Observe(float64(time.Since(start).Milliseconds()))
}

func resultOf(err error, ok bool) string {
	if err != nil {
		return "error"
	}
	if !ok {
		return "declined"
	}
	return "ok"
}
