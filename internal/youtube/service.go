package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// Credentials selects how Data API requests are authorized. APIKey wins when
// both are set. The OAuth token file must already exist: interactive consent
// is handled outside this program.
type Credentials struct {
	APIKey            string
	ClientSecretsFile string
	TokenFile         string
}

var ErrNoCredentials = errors.New("youtube: no api key or oauth token configured")

// NewService builds a Data API client on top of base, which carries the
// transport timeout shared with the rest of the run.
func NewService(ctx context.Context, base *http.Client, creds Credentials, opts ...option.ClientOption) (*ytapi.Service, error) {
	if base == nil {
		base = http.DefaultClient
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	var client *http.Client
	switch {
	case strings.TrimSpace(creds.APIKey) != "":
		client = &http.Client{
			Timeout:   base.Timeout,
			Transport: &transport.APIKey{Key: strings.TrimSpace(creds.APIKey), Transport: rt},
		}
	case creds.TokenFile != "":
		ts, err := LoadTokenSource(ctx, creds.ClientSecretsFile, creds.TokenFile)
		if err != nil {
			return nil, err
		}
		client = &http.Client{
			Timeout:   base.Timeout,
			Transport: &oauth2.Transport{Source: ts, Base: rt},
		}
	default:
		return nil, ErrNoCredentials
	}

	svc, err := ytapi.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return svc, nil
}

// LoadTokenSource reads the installed-app client secrets and a previously
// stored token and returns a refreshing token source.
func LoadTokenSource(ctx context.Context, secretsFile, tokenFile string) (oauth2.TokenSource, error) {
	secrets, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("youtube: read client secrets: %w", err)
	}
	cfg, err := google.ConfigFromJSON(secrets, ytapi.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("youtube: parse client secrets: %w", err)
	}

	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("youtube: read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("youtube: parse token: %w", err)
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("youtube: token in %s is expired and has no refresh token", tokenFile)
	}
	return cfg.TokenSource(ctx, &tok), nil
}
