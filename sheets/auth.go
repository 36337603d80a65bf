package sheets

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SCOPE is broader than the read-only access actually used, matching the scope granted to the service account.
const SCOPE = sheets.SpreadsheetsScope

// authorize loads a service-account key file and returns an HTTP client that mints access tokens on demand.
func authorize(ctx context.Context, credentials string) (*http.Client, error) {
	if strings.TrimSpace(credentials) == "" {
		return nil, fmt.Errorf("missing service account credentials file")
	}

	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account credentials (%w)", err)
	}

	config, err := google.JWTConfigFromJSON(b, SCOPE)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials (%w)", err)
	}

	return config.Client(ctx), nil
}

func connect(ctx context.Context, credentials string, options ...option.ClientOption) (*sheets.Service, error) {
	client, err := authorize(ctx, credentials)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, options...)

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return service, nil
}
