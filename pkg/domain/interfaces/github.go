package interfaces

import (
	"context"

	"github.com/m-mizutani/lanchanto/pkg/domain/model"
)

// ArtifactClient defines operations for fetching workflow run artifacts from GitHub API
type ArtifactClient interface {
	// ListArtifacts fetches the artifact listing at url (workflow_run.artifacts_url)
	ListArtifacts(ctx context.Context, token, url string) ([]*model.ArtifactEntry, error)

	// DownloadArtifact downloads the zip archive at url (archive_download_url)
	DownloadArtifact(ctx context.Context, token, url string) ([]byte, error)
}

// TokenProvider returns a token for GitHub API. An empty token means no credential is configured.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
