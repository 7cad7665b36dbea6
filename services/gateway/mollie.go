package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mymoney"
)

const molliePaid = "paid"

// mollieGateway authorizes by creating a payment; the shopper completes it on the hosted
// checkout page (the client secret), so confirming means verifying the payment got paid.
type mollieGateway struct {
	payer     MolliePayer
	auth      authenticator
	profileID string
	testMode  bool
	logger    mylog.Logger
}

func newMollieGateway(payer MolliePayer, auth authenticator, profileID string, testMode bool, logger mylog.Logger) *mollieGateway {
	return &mollieGateway{
		payer:     payer,
		auth:      auth,
		profileID: profileID,
		testMode:  testMode,
		logger:    logger,
	}
}

func (g *mollieGateway) CreateAuthorization(c context.Context, request AuthorizationRequest) (Authorization, error) {
	paymentRequest := mollie.Payment{
		Amount: &mollie.Amount{
			Currency: strings.ToUpper(request.Currency),
			Value:    mymoney.Value(request.AmountInCents),
		},
		Description: fmt.Sprintf("Order %s", request.Reference),
		RedirectURL: request.ReturnURL,
		Metadata: map[string]string{
			"reference": request.Reference,
		},
	}
	if g.auth.setup(c, request.Reference, g.payer) {
		// organization tokens need an explicit profile
		paymentRequest.ProfileID = g.profileID
		paymentRequest.TestMode = g.testMode
	}

	payment, err := g.payer.CreatePayment(c, paymentRequest)
	if err != nil {
		return Authorization{}, myerrors.NewUnavailableError(fmt.Errorf("error creating mollie payment for %s: %w", request.Reference, err))
	}

	checkoutURL := ""
	if payment.Links.Checkout != nil {
		checkoutURL = payment.Links.Checkout.Href
	}

	g.logger.Log(c, request.Reference, mylog.SeverityInfo, "Created payment %s for %s", payment.ID, mymoney.Format(request.AmountInCents, request.Currency))

	return Authorization{
		ID:            payment.ID,
		ClientSecret:  checkoutURL,
		AmountInCents: request.AmountInCents,
		Currency:      strings.ToLower(request.Currency),
		Provider:      ProviderMollie,
	}, nil
}

func (g *mollieGateway) ConfirmAuthorization(c context.Context, authorization Authorization, instrument Instrument) (Outcome, error) {
	g.auth.setup(c, authorization.ID, g.payer)

	payment, err := g.payer.GetPaymentOnID(c, authorization.ID)
	if err != nil {
		return Outcome{}, myerrors.NewUnavailableError(fmt.Errorf("error fetching mollie payment %s: %w", authorization.ID, err))
	}

	if payment.Status != molliePaid {
		g.logger.Log(c, authorization.ID, mylog.SeverityInfo, "Payment %s not completed: status %s", payment.ID, payment.Status)
		return failed(fmt.Sprintf("payment not completed (status %s)", payment.Status)), nil
	}

	capturedAmount := int64(0)
	if payment.Amount != nil {
		capturedAmount, err = mymoney.ToMinorUnits(payment.Amount.Value)
		if err != nil {
			return Outcome{}, myerrors.NewInternalError(fmt.Errorf("error parsing amount of mollie payment %s: %w", payment.ID, err))
		}
	}

	createdEpoch := int64(0)
	if payment.CreatedAt != nil {
		createdEpoch = payment.CreatedAt.Unix()
	}

	return captured(payment.ID, capturedAmount, createdEpoch), nil
}
