// Package auth acquires and caches the bearer tokens attached to every call
// made to the Nuance Mix runtimes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentials identify the client to the authorization server.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Grant is a freshly issued access token.
type Grant struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// Authenticator exchanges client credentials for an access token. A
// rejection by the rate limiter must wrap ErrRateLimited.
type Authenticator interface {
	Authenticate(ctx context.Context, creds ClientCredentials) (*Grant, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, creds ClientCredentials) (*Grant, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, creds ClientCredentials) (*Grant, error) {
	return f(ctx, creds)
}

// OAuth2Authenticator performs the OAuth2 client credentials grant, sending
// the credentials as HTTP basic auth.
type OAuth2Authenticator struct {
	tokenURL string
	client   *http.Client
}

// NewOAuth2Authenticator creates an authenticator for tokenURL. A nil client
// uses http.DefaultClient.
func NewOAuth2Authenticator(tokenURL string, client *http.Client) *OAuth2Authenticator {
	return &OAuth2Authenticator{tokenURL: tokenURL, client: client}
}

func (a *OAuth2Authenticator) Authenticate(ctx context.Context, creds ClientCredentials) (*Grant, error) {
	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     a.tokenURL,
		Scopes:       creds.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if a.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return nil, err
	}

	grant := &Grant{AccessToken: tok.AccessToken}
	if !tok.Expiry.IsZero() {
		grant.ExpiresIn = time.Until(tok.Expiry)
	}
	return grant, nil
}
