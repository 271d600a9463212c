package rest

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/google"
)

var Scopes = []string{
	"https://www.googleapis.com/auth/earthengine",
	"https://www.googleapis.com/auth/cloud-platform",
}

type Credentials struct {
	// ServiceAccountKey is the path of a JSON key file.
	ServiceAccountKey string
	ClientID          string
	ClientSecret      string
	TokenURL          string
}

// NewHTTPClient returns an OAuth2 client for the first credential kind that is
// configured: service account key, client credentials, then application
// default credentials.
func NewHTTPClient(ctx context.Context, creds Credentials) (*http.Client, error) {
	switch {
	case creds.ServiceAccountKey != "":
		key, err := os.ReadFile(creds.ServiceAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account key: %w", err)
		}
		config, err := google.JWTConfigFromJSON(key, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		return config.Client(ctx), nil
	case creds.ClientID != "" || creds.ClientSecret != "":
		if creds.ClientID == "" || creds.ClientSecret == "" || creds.TokenURL == "" {
			return nil, fmt.Errorf("client credentials need EE_CLIENT_ID, EE_CLIENT_SECRET and EE_TOKEN_URL")
		}
		config := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     creds.TokenURL,
			Scopes:       Scopes,
		}
		return config.Client(ctx), nil
	}
	client, err := google.DefaultClient(ctx, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("no earth engine credentials configured: %w", err)
	}
	return client, nil
}
