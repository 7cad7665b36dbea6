package credentials

import (
	"fmt"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/shopcheckout/services/gateway"
)

// ProviderCredentials are the oauth client credentials of the shop at a payment provider.
// AuthURL and TokenURL override the public endpoints.
type ProviderCredentials struct {
	ClientID string
	Secret   string
	Scopes   string
	AuthURL  string
	TokenURL string
}

type Config map[string]ProviderCredentials

var (
	endpoints = map[string]oauth2.Endpoint{
		gateway.ProviderStripe: {
			AuthURL:   "https://connect.stripe.com/oauth/authorize",
			TokenURL:  "https://connect.stripe.com/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		gateway.ProviderMollie: {
			AuthURL:   "https://my.mollie.com/oauth2/authorize",
			TokenURL:  "https://api.mollie.com/oauth2/tokens",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	defaultScopes = map[string]string{
		gateway.ProviderStripe: "read_write",
		gateway.ProviderMollie: "payments.read payments.write profiles.read",
	}
)

type providers map[string]ProviderCredentials

func newProviders(cfg Config) (providers, error) {
	result := providers{}
	for name, credentials := range cfg {
		if _, found := endpoints[name]; !found {
			return nil, fmt.Errorf("oauth provider with name '%s' not supported", name)
		}
		if credentials.ClientID == "" {
			continue
		}
		if credentials.Scopes == "" {
			credentials.Scopes = defaultScopes[name]
		}
		result[name] = credentials
	}
	return result, nil
}

func (p providers) oauthConfig(providerName string, redirectURL string) (*oauth2.Config, bool) {
	credentials, found := p[providerName]
	if !found {
		return nil, false
	}

	endpoint := endpoints[providerName]
	if credentials.AuthURL != "" {
		endpoint.AuthURL = credentials.AuthURL
	}
	if credentials.TokenURL != "" {
		endpoint.TokenURL = credentials.TokenURL
	}

	return &oauth2.Config{
		ClientID:     credentials.ClientID,
		ClientSecret: credentials.Secret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{credentials.Scopes},
	}, true
}
