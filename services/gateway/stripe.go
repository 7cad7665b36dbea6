package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
)

const stripeUnexpectedState = "payment_intent_unexpected_state"

type stripeGateway struct {
	payer  StripePayer
	auth   authenticator
	logger mylog.Logger
}

func newStripeGateway(payer StripePayer, auth authenticator, logger mylog.Logger) *stripeGateway {
	return &stripeGateway{
		payer:  payer,
		auth:   auth,
		logger: logger,
	}
}

func (g *stripeGateway) CreateAuthorization(c context.Context, request AuthorizationRequest) (Authorization, error) {
	g.auth.setup(c, request.Reference, g.payer)

	params := stripe.PaymentIntentParams{
		Amount:             stripe.Int64(request.AmountInCents),
		Currency:           stripe.String(request.Currency),
		Description:        stripe.String(fmt.Sprintf("Order %s", request.Reference)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.IdempotencyKey = stripe.String(request.Reference)
	params.AddMetadata("reference", request.Reference)
	if request.ShopperEmail != "" {
		params.ReceiptEmail = stripe.String(request.ShopperEmail)
	}

	intent, err := g.payer.CreatePaymentIntent(c, params)
	if err != nil {
		return Authorization{}, myerrors.NewUnavailableError(fmt.Errorf("error creating stripe payment-intent for %s: %w", request.Reference, err))
	}

	g.logger.Log(c, request.Reference, mylog.SeverityInfo, "Created payment-intent %s for %d %s", intent.ID, intent.Amount, intent.Currency)

	return Authorization{
		ID:            intent.ID,
		ClientSecret:  intent.ClientSecret,
		AmountInCents: intent.Amount,
		Currency:      string(intent.Currency),
		Provider:      ProviderStripe,
	}, nil
}

func (g *stripeGateway) ConfirmAuthorization(c context.Context, authorization Authorization, instrument Instrument) (Outcome, error) {
	g.auth.setup(c, authorization.ID, g.payer)

	intent, err := g.payer.ConfirmPaymentIntent(c, authorization.ID, stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(instrument.PaymentMethodID),
	})
	if err != nil {
		stripeErr := &stripe.Error{}
		if !errors.As(err, &stripeErr) {
			return Outcome{}, myerrors.NewUnavailableError(fmt.Errorf("error confirming stripe payment-intent %s: %w", authorization.ID, err))
		}
		if stripeErr.Type == stripe.ErrorTypeCard {
			g.logger.Log(c, authorization.ID, mylog.SeverityInfo, "Payment-intent %s declined: %s", authorization.ID, stripeErr.Msg)
			return failed(stripeErr.Msg), nil
		}
		if stripeErr.Code == stripeUnexpectedState {
			// Confirmed before, but the response got lost
			return g.recoverConfirmed(c, authorization)
		}
		return Outcome{}, myerrors.NewUnavailableError(fmt.Errorf("error confirming stripe payment-intent %s: %w", authorization.ID, err))
	}

	return g.outcomeOf(c, intent), nil
}

func (g *stripeGateway) recoverConfirmed(c context.Context, authorization Authorization) (Outcome, error) {
	intent, err := g.payer.GetPaymentIntent(c, authorization.ID)
	if err != nil {
		return Outcome{}, myerrors.NewUnavailableError(fmt.Errorf("error fetching stripe payment-intent %s: %w", authorization.ID, err))
	}
	g.logger.Log(c, authorization.ID, mylog.SeverityWarn, "Payment-intent %s was already confirmed: status %s", authorization.ID, intent.Status)

	return g.outcomeOf(c, intent), nil
}

func (g *stripeGateway) outcomeOf(c context.Context, intent stripe.PaymentIntent) Outcome {
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		g.logger.Log(c, intent.ID, mylog.SeverityInfo, "Payment-intent %s not completed: status %s", intent.ID, intent.Status)
		return failed(fmt.Sprintf("payment not completed (status %s)", intent.Status))
	}

	chargeID := intent.ID
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		chargeID = intent.LatestCharge.ID
	}

	return captured(chargeID, intent.AmountReceived, intent.Created)
}
