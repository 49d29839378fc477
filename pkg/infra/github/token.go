package github

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/interfaces"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
)

// StaticToken is a personal access token or any other fixed token
type StaticToken string

// Token returns the token as is
func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

type appToken struct {
	transport *ghinstallation.Transport
}

// NewAppToken creates a TokenProvider issuing GitHub App installation tokens.
// Tokens are cached and refreshed by ghinstallation.
func NewAppToken(appID, installationID int64, privateKey []byte) (interfaces.TokenProvider, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID))
	}

	return &appToken{transport: itr}, nil
}

func (t *appToken) Token(ctx context.Context) (string, error) {
	token, err := t.transport.Token(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get installation token")
	}
	return token, nil
}

// NewTokenProvider picks GitHub App authentication when fully configured and
// the static token otherwise
func NewTokenProvider(cred model.Credential) (interfaces.TokenProvider, error) {
	if cred.HasApp() {
		return NewAppToken(cred.GitHubAppID, cred.GitHubAppInstallationID, []byte(cred.GitHubAppPrivateKey))
	}
	return StaticToken(cred.GitHubToken), nil
}
