package config

import (
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub credentials given by flags or environment variables.
// They are used only when the config file leaves the value empty.
type GitHub struct {
	WebhookSecret     string
	Token             string
	AppID             int64
	AppInstallationID int64
	AppPrivateKey     string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("LANCHANTO_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub API token to download artifacts",
			Destination: &c.Token,
			Sources:     cli.EnvVars("LANCHANTO_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID, used instead of the token",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("LANCHANTO_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.AppInstallationID,
			Sources:     cli.EnvVars("LANCHANTO_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM content)",
			Destination: &c.AppPrivateKey,
			Sources:     cli.EnvVars("LANCHANTO_GITHUB_APP_PRIVATE_KEY"),
		},
	}
}

// Credential converts the flags into a credential
func (c *GitHub) Credential() model.Credential {
	return model.Credential{
		GitHubWebhookSecret:     c.WebhookSecret,
		GitHubToken:             c.Token,
		GitHubAppID:             c.AppID,
		GitHubAppInstallationID: c.AppInstallationID,
		GitHubAppPrivateKey:     c.AppPrivateKey,
	}
}
