package gateway

import (
	"context"

	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/mytime"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
)

type credentialsUser interface {
	UseAPIKey(key string)
	UseToken(accessToken string)
}

type authenticator struct {
	providerName string
	apiKey       string
	vault        myvault.VaultReader[Token]
	nower        mytime.Nower
	logger       mylog.Logger
}

func newAuthenticator(providerName string, apiKey string, vault myvault.VaultReader[Token], nower mytime.Nower, logger mylog.Logger) authenticator {
	return authenticator{
		providerName: providerName,
		apiKey:       apiKey,
		vault:        vault,
		nower:        nower,
		logger:       logger,
	}
}

// setup configures the payer with the stored access token, falling back to the api key.
// It reports whether the access token was used.
func (a authenticator) setup(c context.Context, traceLabel string, payer credentialsUser) bool {
	token, exist, err := a.vault.Get(c, myvault.TokenUID(a.providerName))
	if err != nil || !exist || token.ProviderName != a.providerName || token.AccessToken == "" || a.expired(token) {
		a.logger.Log(c, traceLabel, mylog.SeverityInfo, "Using api key")
		payer.UseAPIKey(a.apiKey)
		return false
	}

	a.logger.Log(c, traceLabel, mylog.SeverityInfo, "Using access token of oauth session %s", token.SessionUID)
	payer.UseToken(token.AccessToken)
	return true
}

func (a authenticator) expired(token Token) bool {
	return token.ExpiresIn != nil && token.ExpiresIn.Before(a.nower.Now())
}
