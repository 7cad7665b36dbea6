package gateway

import (
	"context"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

//go:generate mockgen -source=stripe_payer.go -package gateway -destination stripe_payer_mock.go StripePayer
type StripePayer interface {
	UseAPIKey(key string)
	UseToken(accessToken string)
	CreatePaymentIntent(c context.Context, params stripe.PaymentIntentParams) (stripe.PaymentIntent, error)
	ConfirmPaymentIntent(c context.Context, id string, params stripe.PaymentIntentConfirmParams) (stripe.PaymentIntent, error)
	GetPaymentIntent(c context.Context, id string) (stripe.PaymentIntent, error)
}

type stripePayer struct{}

func NewStripePayer() StripePayer {
	return &stripePayer{}
}

func (p *stripePayer) UseAPIKey(apiKey string) {
	stripe.Key = apiKey
}

func (p *stripePayer) UseToken(accessToken string) {
	stripe.Key = accessToken
}

// Errors are returned unwrapped so callers can inspect *stripe.Error

func (p *stripePayer) CreatePaymentIntent(c context.Context, params stripe.PaymentIntentParams) (stripe.PaymentIntent, error) {
	params.Context = c
	intent, err := paymentintent.New(&params)
	if err != nil {
		return stripe.PaymentIntent{}, err
	}
	return *intent, nil
}

func (p *stripePayer) ConfirmPaymentIntent(c context.Context, id string, params stripe.PaymentIntentConfirmParams) (stripe.PaymentIntent, error) {
	params.Context = c
	intent, err := paymentintent.Confirm(id, &params)
	if err != nil {
		return stripe.PaymentIntent{}, err
	}
	return *intent, nil
}

func (p *stripePayer) GetPaymentIntent(c context.Context, id string) (stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = c
	intent, err := paymentintent.Get(id, params)
	if err != nil {
		return stripe.PaymentIntent{}, err
	}
	return *intent, nil
}
