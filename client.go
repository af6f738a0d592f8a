package calsync

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// OAuthConfig builds the oauth2 application config for a provider from the
// credentials registered in the store. google.Endpoint carries the token
// refresh URL (https://oauth2.googleapis.com/token).
func OAuthConfig(store *Store, provider string) (*oauth2.Config, error) {
	clientID, clientSecret, err := store.App(provider)
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{calendar.CalendarScope},
	}, nil
}

// savingTokenSource writes refreshed tokens back to the store, so the next
// run starts from the newest access token and any rotated refresh token.
type savingTokenSource struct {
	src      oauth2.TokenSource
	store    *Store
	account  string
	provider string
	last     string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != s.last {
		if err := s.store.SaveToken(s.account, s.provider, token); err != nil {
			return nil, fmt.Errorf("saving refreshed token: %w", err)
		}
		s.last = token.AccessToken
	}
	return token, nil
}

// Client returns an HTTP client authorized as the account's linked provider
// identity. Expired access tokens refresh transparently through the stored
// refresh token; refreshed tokens are persisted.
func Client(ctx context.Context, store *Store, account, provider string) (*http.Client, error) {
	config, err := OAuthConfig(store, provider)
	if err != nil {
		return nil, err
	}
	token, err := store.Token(account, provider)
	if err != nil {
		return nil, err
	}
	source := &savingTokenSource{
		src:      config.TokenSource(ctx, token),
		store:    store,
		account:  account,
		provider: provider,
		last:     token.AccessToken,
	}
	return oauth2.NewClient(ctx, source), nil
}
