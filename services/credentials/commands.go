package credentials

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
	"github.com/MarcGrol/shopcheckout/lib/myvault"
	"github.com/MarcGrol/shopcheckout/services/credentials/credentialsevents"
	"github.com/MarcGrol/shopcheckout/services/gateway"
)

func (s *service) status(c context.Context) ([]Status, error) {
	s.logger.Log(c, "", mylog.SeverityInfo, "Get credentials status")

	statuses := []Status{}
	for name := range s.providers {
		token, exists, err := s.vault.Get(c, myvault.TokenUID(name))
		if err != nil {
			return nil, myerrors.NewInternalError(fmt.Errorf("error fetching token of %s: %w", name, err))
		}
		statuses = append(statuses, tokenToStatus(name, token, exists))
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ProviderName < statuses[j].ProviderName
	})

	return statuses, nil
}

func tokenToStatus(providerName string, token gateway.Token, exists bool) Status {
	return Status{
		ProviderName: providerName,
		SessionUID:   token.SessionUID,
		Scopes:       token.Scopes,
		Connected:    exists && token.AccessToken != "",
		Refreshable:  exists && token.RefreshToken != "",
		ValidUntil:   token.ExpiresIn,
		LastModified: token.LastModified,
	}
}

// start begins an authorization-code flow with proof key and returns the url the
// merchant must visit at the provider
func (s *service) start(c context.Context, providerName string, returnURL string, hostname string) (string, error) {
	now := s.nower.Now()
	sessionUID := s.uuider.Create()

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Start connecting to %s", providerName)

	cfg, found := s.providers.oauthConfig(providerName, completionURL(hostname))
	if !found {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("provider with name '%s' not configured", providerName))
	}
	if returnURL == "" {
		return "", myerrors.NewInvalidInputErrorf("missing returnURL")
	}
	if !isLocalURL(returnURL, hostname) {
		return "", myerrors.NewInvalidInputErrorf("returnURL '%s' does not point to this site", returnURL)
	}

	verifier := oauth2.GenerateVerifier()

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		err := s.sessionStore.Put(c, sessionUID, ConnectSession{
			UID:          sessionUID,
			ProviderName: providerName,
			Scopes:       s.providers[providerName].Scopes,
			ReturnURL:    returnURL,
			Verifier:     verifier,
			CreatedAt:    now,
			LastModified: &now,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing connect session %s: %w", sessionUID, err))
		}

		err = s.publisher.Publish(c, credentialsevents.TopicName, credentialsevents.ConnectStarted{
			ProviderName: providerName,
			SessionUID:   sessionUID,
			Scopes:       s.providers[providerName].Scopes,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %w", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return cfg.AuthCodeURL(sessionUID, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)), nil
}

// done exchanges the authorization code for a token and stores it in the vault,
// where the payment gateway picks it up
func (s *service) done(c context.Context, sessionUID string, code string, hostname string) (string, error) {
	now := s.nower.Now()

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Complete connect session %s", sessionUID)

	session, found, err := s.sessionStore.Get(c, sessionUID)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error fetching connect session %s: %w", sessionUID, err))
	}
	if !found {
		return "", myerrors.NewNotFoundError(fmt.Errorf("connect session %s not found", sessionUID))
	}
	if session.Done {
		return session.ReturnURL, nil
	}

	cfg, found := s.providers.oauthConfig(session.ProviderName, completionURL(hostname))
	if !found {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("provider with name '%s' not configured", session.ProviderName))
	}

	token, err := cfg.Exchange(c, code, oauth2.VerifierOption(session.Verifier))
	if err != nil {
		return "", myerrors.NewUnavailableError(fmt.Errorf("error exchanging code with %s: %w", session.ProviderName, err))
	}

	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		session.Done = true
		session.LastModified = &now
		err := s.sessionStore.Put(c, sessionUID, session)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing connect session %s: %w", sessionUID, err))
		}

		err = s.vault.Put(c, myvault.TokenUID(session.ProviderName), gateway.Token{
			ProviderName: session.ProviderName,
			SessionUID:   sessionUID,
			Scopes:       session.Scopes,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			CreatedAt:    now,
			LastModified: &now,
			ExpiresIn:    expiryOf(token),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing token in vault: %w", err))
		}

		err = s.publisher.Publish(c, credentialsevents.TopicName, credentialsevents.ConnectCompleted{
			ProviderName: session.ProviderName,
			SessionUID:   sessionUID,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %w", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Connected to %s", session.ProviderName)

	return session.ReturnURL, nil
}

// refresh renews the access token of the provider. Without a refresh token there is nothing to do.
func (s *service) refresh(c context.Context, providerName string) (Status, error) {
	now := s.nower.Now()
	uid := s.uuider.Create()

	s.logger.Log(c, uid, mylog.SeverityInfo, "Refresh token of %s", providerName)

	cfg, found := s.providers.oauthConfig(providerName, "")
	if !found {
		return Status{}, myerrors.NewInvalidInputError(fmt.Errorf("provider with name '%s' not configured", providerName))
	}

	tokenUID := myvault.TokenUID(providerName)
	current, exists, err := s.vault.Get(c, tokenUID)
	if err != nil {
		return Status{}, myerrors.NewInternalError(fmt.Errorf("error fetching token %s: %w", tokenUID, err))
	}
	if !exists || current.RefreshToken == "" {
		s.logger.Log(c, uid, mylog.SeverityInfo, "No token of %s to refresh", providerName)
		return tokenToStatus(providerName, current, exists), nil
	}

	renewed, err := cfg.TokenSource(c, &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
	if err != nil {
		return Status{}, myerrors.NewUnavailableError(fmt.Errorf("error refreshing token of %s: %w", providerName, err))
	}

	current.AccessToken = renewed.AccessToken
	if renewed.RefreshToken != "" {
		current.RefreshToken = renewed.RefreshToken
	}
	current.ExpiresIn = expiryOf(renewed)
	current.LastModified = &now

	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		err := s.vault.Put(c, tokenUID, current)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing token %s: %w", tokenUID, err))
		}

		err = s.publisher.Publish(c, credentialsevents.TopicName, credentialsevents.TokenRefreshed{
			ProviderName: providerName,
			SessionUID:   current.SessionUID,
			UID:          uid,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %w", err))
		}

		return nil
	})
	if err != nil {
		return Status{}, err
	}

	return tokenToStatus(providerName, current, true), nil
}

func completionURL(hostname string) string {
	return fmt.Sprintf("%s/credentials/done", hostname)
}

func expiryOf(token *oauth2.Token) *time.Time {
	if token.Expiry.IsZero() {
		return nil
	}
	expiry := token.Expiry
	return &expiry
}

// isLocalURL accepts absolute paths and urls on our own host only
func isLocalURL(returnURL string, hostname string) bool {
	if strings.HasPrefix(returnURL, "//") || strings.Contains(returnURL, "\\") {
		return false
	}
	u, err := url.Parse(returnURL)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return strings.HasPrefix(u.Path, "/")
	}
	self, err := url.Parse(hostname)
	if err != nil {
		return false
	}
	return u.Scheme == self.Scheme && u.Host == self.Host
}
