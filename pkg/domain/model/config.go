package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

// Config is the deployment configuration loaded once at startup. It must not
// be modified after the server starts.
type Config struct {
	Credential Credential `toml:"credential"`
	Deploy     []Deploy   `toml:"deploy"`
}

// Credential holds secrets for webhook verification and the GitHub API
type Credential struct {
	GitHubWebhookSecret string `toml:"github_webhook_secret" masq:"secret"`
	GitHubToken         string `toml:"github_token" masq:"secret"`

	// GitHub App installation credentials. Used instead of GitHubToken when all three are set.
	GitHubAppID             int64  `toml:"github_app_id"`
	GitHubAppInstallationID int64  `toml:"github_app_installation_id"`
	GitHubAppPrivateKey     string `toml:"github_app_private_key" masq:"secret"`
}

// Deploy maps a repository to the artifacts extracted on a completed workflow run
type Deploy struct {
	Repository string     `toml:"repository"`
	Artifact   []Artifact `toml:"artifact"`
}

// Artifact is a wanted artifact name and the directory it is extracted into
type Artifact struct {
	Name   string `toml:"name"`
	Target string `toml:"target"`
}

// HasApp reports whether GitHub App credentials are fully configured
func (c Credential) HasApp() bool {
	return c.GitHubAppID != 0 && c.GitHubAppInstallationID != 0 && c.GitHubAppPrivateKey != ""
}

// Merge fills empty fields of c with values from fallback. Values already
// present in c always win.
func (c Credential) Merge(fallback Credential) Credential {
	if c.GitHubWebhookSecret == "" {
		c.GitHubWebhookSecret = fallback.GitHubWebhookSecret
	}
	if c.GitHubToken == "" {
		c.GitHubToken = fallback.GitHubToken
	}
	if c.GitHubAppID == 0 {
		c.GitHubAppID = fallback.GitHubAppID
	}
	if c.GitHubAppInstallationID == 0 {
		c.GitHubAppInstallationID = fallback.GitHubAppInstallationID
	}
	if c.GitHubAppPrivateKey == "" {
		c.GitHubAppPrivateKey = fallback.GitHubAppPrivateKey
	}
	return c
}

// Validate checks that repositories are unique and every artifact is complete
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Deploy))
	for i, d := range c.Deploy {
		if d.Repository == "" {
			return goerr.New("repository is empty",
				goerr.T(types.ErrTagInvalidConfig),
				goerr.V("index", i))
		}
		if _, ok := seen[d.Repository]; ok {
			return goerr.New("duplicated repository",
				goerr.T(types.ErrTagInvalidConfig),
				goerr.V("repository", d.Repository))
		}
		seen[d.Repository] = struct{}{}

		for j, a := range d.Artifact {
			if a.Name == "" || a.Target == "" {
				return goerr.New("artifact requires both name and target",
					goerr.T(types.ErrTagInvalidConfig),
					goerr.V("repository", d.Repository),
					goerr.V("index", j))
			}
		}
	}

	return nil
}
