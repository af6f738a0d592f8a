package calsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "none", OutcomeNone.String())
	assert.Equal(t, "created", OutcomeCreated.String())
	assert.Equal(t, "updated", OutcomeUpdated.String())
	assert.Equal(t, "deleted", OutcomeDeleted.String())
}

func TestFactoryGoogle(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveApp(ProviderGoogle, "client-id", "client-secret"))
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, store.SaveToken("teacher@techhigh.us", ProviderGoogle, token))

	factory := NewFactory(&Config{ConferencePolicy: ConferenceNone}, store, nil)
	schedule := &Schedule{ID: 7, Owner: "teacher@techhigh.us", Provider: ProviderGoogle}

	provider, err := factory.ProviderFor(context.Background(), schedule)
	require.NoError(t, err)
	google, ok := provider.(*GoogleProvider)
	require.True(t, ok)
	assert.Equal(t, ConferenceNone, google.policy)
}

func TestFactoryGoogleNoCredentials(t *testing.T) {
	store := newTestStore(t)
	factory := NewFactory(&Config{}, store, nil)
	schedule := &Schedule{ID: 7, Owner: "teacher@techhigh.us", Provider: ProviderGoogle}

	_, err := factory.ProviderFor(context.Background(), schedule)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestFactoryGoogleNoLinkedAccount(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveApp(ProviderGoogle, "client-id", "client-secret"))
	factory := NewFactory(&Config{}, store, nil)
	schedule := &Schedule{ID: 7, Owner: "teacher@techhigh.us", Provider: ProviderGoogle}

	_, err := factory.ProviderFor(context.Background(), schedule)
	assert.ErrorIs(t, err, ErrNoLinkedAccount)
}

func TestFactoryCalDAVUnnamed(t *testing.T) {
	factory := NewFactory(&Config{}, newTestStore(t), nil)
	schedule := &Schedule{ID: 7, Provider: ProviderCalDAV}

	_, err := factory.ProviderFor(context.Background(), schedule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "names no CalDAV server")
}

func TestFactoryCalDAVUnknownServer(t *testing.T) {
	config := &Config{CalDAVs: map[string]CalDAVConfig{
		"school": {ServerURL: "https://dav.techhigh.us/calendars/teacher/"},
	}}
	factory := NewFactory(config, newTestStore(t), nil)
	schedule := &Schedule{ID: 7, Provider: ProviderCalDAV, ProviderConfig: "home"}

	_, err := factory.ProviderFor(context.Background(), schedule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in configuration")
}

func TestFactoryUnsupportedProvider(t *testing.T) {
	factory := NewFactory(&Config{}, newTestStore(t), nil)
	schedule := &Schedule{ID: 7, Provider: "exchange"}

	_, err := factory.ProviderFor(context.Background(), schedule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type")
}
