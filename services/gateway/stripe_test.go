package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mystore"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
)

var (
	stripeAuthorization = Authorization{
		ID:            "pi_1",
		ClientSecret:  "pi_1_secret_2",
		AmountInCents: 4999,
		Currency:      "eur",
		Provider:      ProviderStripe,
	}
	stripeRequest = AuthorizationRequest{
		Reference:     "session_1_3",
		AmountInCents: 4999,
		Currency:      "eur",
		ShopperEmail:  "marc@home.nl",
	}
)

func TestStripeGateway(t *testing.T) {

	t.Run("Create authorization with api-key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, _ := setupStripe(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey("sk_test_123")
		payer.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, params stripe.PaymentIntentParams) (stripe.PaymentIntent, error) {
			assert.Equal(t, int64(4999), *params.Amount)
			assert.Equal(t, "eur", *params.Currency)
			assert.Equal(t, "session_1_3", *params.IdempotencyKey)
			assert.Equal(t, "marc@home.nl", *params.ReceiptEmail)
			return stripe.PaymentIntent{
				ID:           "pi_1",
				ClientSecret: "pi_1_secret_2",
				Amount:       4999,
				Currency:     "eur",
			}, nil
		})

		// when
		authorization, err := sut.CreateAuthorization(context.TODO(), stripeRequest)

		// then
		require.NoError(t, err)
		assert.Equal(t, stripeAuthorization, authorization)
	})

	t.Run("Create authorization with access-token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, vault := setupStripe(t, ctrl)

		// given
		require.NoError(t, vault.Put(context.TODO(), myvault.TokenUID(ProviderStripe), Token{
			ProviderName: ProviderStripe,
			SessionUID:   "oauth_1",
			AccessToken:  "my_access_token",
		}))
		payer.EXPECT().UseToken("my_access_token")
		payer.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).Return(stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_2", Amount: 4999, Currency: "eur"}, nil)

		// when
		_, err := sut.CreateAuthorization(context.TODO(), stripeRequest)

		// then
		require.NoError(t, err)
	})

	t.Run("Expired access-token falls back to api-key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, vault := setupStripe(t, ctrl)

		// given
		expired := mytime.ExampleTime.Add(-time.Hour)
		require.NoError(t, vault.Put(context.TODO(), myvault.TokenUID(ProviderStripe), Token{
			ProviderName: ProviderStripe,
			AccessToken:  "my_access_token",
			ExpiresIn:    &expired,
		}))
		payer.EXPECT().UseAPIKey("sk_test_123")
		payer.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).Return(stripe.PaymentIntent{ID: "pi_1"}, nil)

		// when
		_, err := sut.CreateAuthorization(context.TODO(), stripeRequest)

		// then
		require.NoError(t, err)
	})

	t.Run("Create authorization unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, _ := setupStripe(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).Return(stripe.PaymentIntent{}, errors.New("connection reset"))

		// when
		_, err := sut.CreateAuthorization(context.TODO(), stripeRequest)

		// then
		require.Error(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, myerrors.GetHTTPStatus(err))
	})

	t.Run("Confirm captured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, _ := setupStripe(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().ConfirmPaymentIntent(gomock.Any(), "pi_1", gomock.Any()).DoAndReturn(func(c context.Context, id string, params stripe.PaymentIntentConfirmParams) (stripe.PaymentIntent, error) {
			assert.Equal(t, "pm_card_visa", *params.PaymentMethod)
			return stripe.PaymentIntent{
				ID:             "pi_1",
				Status:         stripe.PaymentIntentStatusSucceeded,
				AmountReceived: 4999,
				Created:        1677542339,
				LatestCharge:   &stripe.Charge{ID: "ch_1"},
			}, nil
		})

		// when
		outcome, err := sut.ConfirmAuthorization(context.TODO(), stripeAuthorization, Instrument{PaymentMethodID: "pm_card_visa"})

		// then
		require.NoError(t, err)
		assert.Equal(t, Outcome{
			Status:                OutcomeCaptured,
			ChargeID:              "ch_1",
			CapturedAmountInCents: 4999,
			CreatedEpoch:          1677542339,
		}, outcome)
	})

	t.Run("Confirm declined", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, _ := setupStripe(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().ConfirmPaymentIntent(gomock.Any(), "pi_1", gomock.Any()).Return(stripe.PaymentIntent{}, &stripe.Error{
			Type: stripe.ErrorTypeCard,
			Code: "card_declined",
			Msg:  "Your card was declined.",
		})

		// when
		outcome, err := sut.ConfirmAuthorization(context.TODO(), stripeAuthorization, Instrument{PaymentMethodID: "pm_card_chargeDeclined"})

		// then
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.Equal(t, "Your card was declined.", outcome.FailureMessage)
		assert.Empty(t, outcome.ChargeID)
	})

	t.Run("Confirm again after lost response", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, _ := setupStripe(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().ConfirmPaymentIntent(gomock.Any(), "pi_1", gomock.Any()).Return(stripe.PaymentIntent{}, &stripe.Error{
			Type: stripe.ErrorTypeInvalidRequest,
			Code: "payment_intent_unexpected_state",
		})
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(stripe.PaymentIntent{
			ID:             "pi_1",
			Status:         stripe.PaymentIntentStatusSucceeded,
			AmountReceived: 4999,
			Created:        1677542339,
			LatestCharge:   &stripe.Charge{ID: "ch_1"},
		}, nil)

		// when
		outcome, err := sut.ConfirmAuthorization(context.TODO(), stripeAuthorization, Instrument{PaymentMethodID: "pm_card_visa"})

		// then
		require.NoError(t, err)
		assert.True(t, outcome.IsCaptured())
		assert.Equal(t, "ch_1", outcome.ChargeID)
	})

	t.Run("Confirm requires action", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, _ := setupStripe(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().ConfirmPaymentIntent(gomock.Any(), "pi_1", gomock.Any()).Return(stripe.PaymentIntent{
			ID:     "pi_1",
			Status: stripe.PaymentIntentStatusRequiresAction,
		}, nil)

		// when
		outcome, err := sut.ConfirmAuthorization(context.TODO(), stripeAuthorization, Instrument{PaymentMethodID: "pm_card_threeDSecure2Required"})

		// then
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.Contains(t, outcome.FailureMessage, "requires_action")
	})

	t.Run("Confirm transport error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, payer, _ := setupStripe(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().ConfirmPaymentIntent(gomock.Any(), "pi_1", gomock.Any()).Return(stripe.PaymentIntent{}, errors.New("timeout"))

		// when
		_, err := sut.ConfirmAuthorization(context.TODO(), stripeAuthorization, Instrument{PaymentMethodID: "pm_card_visa"})

		// then
		require.Error(t, err)
		assert.True(t, myerrors.IsUnavailable(err))
	})
}

func setupStripe(t *testing.T, ctrl *gomock.Controller) (*stripeGateway, *MockStripePayer, myvault.VaultReadWriter[Token]) {
	vault, _, err := mystore.NewInMemoryStore[Token](context.TODO())
	require.NoError(t, err)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	payer := NewMockStripePayer(ctrl)
	logger := mylog.New("gateway")

	return newStripeGateway(payer, newAuthenticator(ProviderStripe, "sk_test_123", vault, nower, logger), logger), payer, vault
}
