package gateway

import (
	"context"
	"fmt"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
)

//go:generate mockgen -source=mollie_payer.go -package gateway -destination mollie_payer_mock.go MolliePayer
type MolliePayer interface {
	UseAPIKey(key string)
	UseToken(accessToken string)
	CreatePayment(c context.Context, request mollie.Payment) (mollie.Payment, error)
	GetPaymentOnID(c context.Context, paymentID string) (mollie.Payment, error)
}

type molliePayer struct {
	client *mollie.Client
}

func NewMolliePayer() (MolliePayer, error) {
	config := mollie.NewAPITestingConfig(true)

	client, err := mollie.NewClient(nil, config)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error creating mollie client: %w", err))
	}

	return &molliePayer{
		client: client,
	}, nil
}

func (p *molliePayer) UseAPIKey(apiKey string) {
	p.client.WithAuthenticationValue(apiKey)
}

func (p *molliePayer) UseToken(accessToken string) {
	p.client.WithAuthenticationValue(accessToken)
	p.client.SetAccessToken(accessToken)
}

func (p *molliePayer) CreatePayment(c context.Context, request mollie.Payment) (mollie.Payment, error) {
	_, payment, err := p.client.Payments.Create(c, request, nil)
	if err != nil {
		return mollie.Payment{}, fmt.Errorf("error creating mollie payment: %w", err)
	}

	return *payment, nil
}

func (p *molliePayer) GetPaymentOnID(c context.Context, id string) (mollie.Payment, error) {
	_, payment, err := p.client.Payments.Get(c, id, &mollie.PaymentOptions{})
	if err != nil {
		return mollie.Payment{}, fmt.Errorf("error getting mollie payment %s: %w", id, err)
	}

	return *payment, nil
}
