package gateway

import "time"

const (
	ProviderStripe = "stripe"
	ProviderMollie = "mollie"
)

type Config struct {
	Provider           string
	APIKey             string
	Currency           string
	MollieProfileID    string
	MollieTestMode     bool
	BreakerMaxFailures uint32
	BreakerOpenPeriod  time.Duration
}

type AuthorizationRequest struct {
	// Reference makes a repeated request for the same cart version idempotent at the provider
	Reference     string
	AmountInCents int64
	Currency      string
	ShopperEmail  string
	ReturnURL     string
}

// Authorization is the handle obtained from the provider. It is bound to a fixed amount.
type Authorization struct {
	ID            string
	ClientSecret  string
	AmountInCents int64
	Currency      string
	Provider      string
}

func (a Authorization) IsZero() bool {
	return a.ID == ""
}

// Instrument is the payment method the shopper entered in the provider's widget
type Instrument struct {
	PaymentMethodID string
}

type OutcomeStatus string

const (
	OutcomeCaptured OutcomeStatus = "captured"
	OutcomeFailed   OutcomeStatus = "failed"
)

type Outcome struct {
	Status                OutcomeStatus
	ChargeID              string
	CapturedAmountInCents int64
	CreatedEpoch          int64
	FailureMessage        string
}

func (o Outcome) IsCaptured() bool {
	return o.Status == OutcomeCaptured
}

func captured(chargeID string, amountInCents int64, createdEpoch int64) Outcome {
	return Outcome{
		Status:                OutcomeCaptured,
		ChargeID:              chargeID,
		CapturedAmountInCents: amountInCents,
		CreatedEpoch:          createdEpoch,
	}
}

func failed(message string) Outcome {
	return Outcome{
		Status:         OutcomeFailed,
		FailureMessage: message,
	}
}

// Token is an access token obtained through an oauth flow with the provider.
// When present it is used instead of the configured api key.
type Token struct {
	ProviderName string
	SessionUID   string
	Scopes       string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	LastModified *time.Time
	ExpiresIn    *time.Time
}
