package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/interfaces"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
	"github.com/m-mizutani/lanchanto/pkg/utils/async"
)

type deployUseCase struct {
	client interfaces.ArtifactClient
	tokens interfaces.TokenProvider
	queue  *async.Queue
	locks  *targetLocks
}

// NewDeploy creates a new instance of DeployUseCase. queue may be nil when
// only synchronous Deploy is used.
func NewDeploy(client interfaces.ArtifactClient, tokens interfaces.TokenProvider, queue *async.Queue) interfaces.DeployUseCase {
	return &deployUseCase{
		client: client,
		tokens: tokens,
		queue:  queue,
		locks:  newTargetLocks(),
	}
}

// Enqueue schedules the job on the background queue
func (uc *deployUseCase) Enqueue(ctx context.Context, job *model.DeployJob) error {
	if uc.queue == nil {
		return goerr.New("deploy queue is not configured", goerr.T(types.ErrTagQueueClosed))
	}

	return uc.queue.Enqueue(ctx, job.ID, func(ctx context.Context) error {
		return uc.Deploy(ctx, job)
	})
}

// Deploy lists the artifacts of the workflow run, downloads the wanted ones
// in configured order and extracts each into its target. Wanted artifacts
// missing from the listing are skipped. The first error aborts the rest.
func (uc *deployUseCase) Deploy(ctx context.Context, job *model.DeployJob) error {
	logger := ctxlog.From(ctx).With(
		"delivery_id", job.ID,
		"repository", job.Repository,
	)
	ctx = ctxlog.With(ctx, logger)

	token, err := uc.tokens.Token(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to get github token",
			goerr.T(types.ErrTagMissingToken),
			goerr.V("repository", job.Repository))
	}
	if token == "" {
		return goerr.New("github token is empty",
			goerr.T(types.ErrTagMissingToken),
			goerr.V("repository", job.Repository))
	}

	if job.ArtifactsURL == "" {
		return goerr.New("artifacts_url is empty",
			goerr.T(types.ErrTagListArtifacts),
			goerr.V("repository", job.Repository))
	}

	logger.Info("Listing artifacts", "url", job.ArtifactsURL)
	entries, err := uc.client.ListArtifacts(ctx, token, job.ArtifactsURL)
	if err != nil {
		return goerr.Wrap(err, "failed to list artifacts",
			goerr.T(types.ErrTagListArtifacts),
			goerr.V("repository", job.Repository),
			goerr.V("url", job.ArtifactsURL))
	}

	byName := make(map[string]*model.ArtifactEntry, len(entries))
	for _, entry := range entries {
		if _, ok := byName[entry.Name]; !ok {
			byName[entry.Name] = entry
		}
	}

	for _, wanted := range job.Deploy.Artifact {
		entry, ok := byName[wanted.Name]
		if !ok {
			logger.Info("Artifact not found in workflow run, skipped", "name", wanted.Name)
			continue
		}

		logger.Info("Downloading artifact",
			"name", entry.Name,
			"url", entry.ArchiveDownloadURL,
			"target", wanted.Target,
		)

		data, err := uc.client.DownloadArtifact(ctx, token, entry.ArchiveDownloadURL)
		if err != nil {
			return goerr.Wrap(err, "failed to download artifact",
				goerr.T(types.ErrTagDownloadArtifact),
				goerr.V("repository", job.Repository),
				goerr.V("name", entry.Name),
				goerr.V("url", entry.ArchiveDownloadURL))
		}

		result, err := uc.extract(ctx, data, wanted.Target)
		if err != nil {
			return goerr.Wrap(err, "failed to extract artifact",
				goerr.V("repository", job.Repository),
				goerr.V("name", entry.Name),
				goerr.V("target", wanted.Target))
		}

		logger.Info("Extracted artifact",
			"name", entry.Name,
			"target", result.TargetDir,
			"file_count", len(result.Files),
			"skipped_count", len(result.Skipped),
			"total_size_bytes", result.Size,
		)
	}

	logger.Info("Deployment completed")
	return nil
}

// extract serializes extractions into the same target directory
func (uc *deployUseCase) extract(ctx context.Context, data []byte, target string) (*model.ExtractResult, error) {
	unlock := uc.locks.lock(target)
	defer unlock()

	return Extract(ctx, data, target)
}
