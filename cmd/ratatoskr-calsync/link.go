package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/oauth2"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

// linkAccount registers the application OAuth client from the config and
// walks the out-of-band code flow for one account, storing its token pair.
func linkAccount() {
	config, err := calsync.ReadConfig(configFile)
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	if config.Google.ClientID == "" || config.Google.ClientSecret == "" {
		log.Fatalf("Error: google client_id and client_secret must be set in %s", configFile)
	}

	store, err := calsync.OpenStore(config.DatabaseFile())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	fmt.Println("🚀 Starting account linking...")
	fmt.Print("👤 Enter account name: ")
	var accountName string
	fmt.Scanln(&accountName)

	if err := store.SaveApp(calsync.ProviderGoogle, config.Google.ClientID, config.Google.ClientSecret); err != nil {
		log.Fatalf("Error saving OAuth client: %v", err)
	}

	oauthConfig, err := calsync.OAuthConfig(store, calsync.ProviderGoogle)
	if err != nil {
		log.Fatalf("Error building OAuth config: %v", err)
	}

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		log.Fatalf("Unable to read authorization code: %v", err)
	}

	token, err := oauthConfig.Exchange(context.Background(), authCode)
	if err != nil {
		log.Fatalf("Unable to retrieve token from web: %v", err)
	}

	if err := store.SaveToken(accountName, calsync.ProviderGoogle, token); err != nil {
		log.Fatalf("Error saving token: %v", err)
	}

	fmt.Printf("✅ Account %s linked successfully\n", accountName)
}
