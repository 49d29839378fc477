package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

type webhookUseCase struct {
	deploys map[string]*model.Deploy
}

// NewWebhook creates a new instance of WebhookUseCase. cfg must not be
// modified afterwards; deploy entries are referenced, not copied.
func NewWebhook(cfg *model.Config) *webhookUseCase {
	deploys := make(map[string]*model.Deploy, len(cfg.Deploy))
	for i := range cfg.Deploy {
		deploys[cfg.Deploy[i].Repository] = &cfg.Deploy[i]
	}

	return &webhookUseCase{
		deploys: deploys,
	}
}

// Route decides what to do with a workflow_run event
func (uc *webhookUseCase) Route(ctx context.Context, event *model.WorkflowRunEvent) *model.RouteDecision {
	logger := ctxlog.From(ctx).With(
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
	)

	decision := uc.route(event)

	switch decision.Result {
	case model.RouteUnknownRepository:
		logger.Warn("No deploy configured for repository",
			"result", decision.Result.String(),
			"error", goerr.New("unknown repository",
				goerr.T(types.ErrTagUnknownRepository),
				goerr.V("repository", event.Repository)),
		)
	case model.RouteDispatch:
		logger.Info("Dispatching deployment",
			"result", decision.Result.String(),
			"artifacts_url", decision.ArtifactsURL,
			"artifacts", len(decision.Deploy.Artifact),
		)
	default:
		logger.Debug("Ignoring workflow run event", "result", decision.Result.String())
	}

	return decision
}

func (uc *webhookUseCase) route(event *model.WorkflowRunEvent) *model.RouteDecision {
	if event.Action != model.ActionCompleted {
		return &model.RouteDecision{Result: model.RouteIgnore}
	}

	deploy, ok := uc.deploys[event.Repository]
	if !ok {
		return &model.RouteDecision{Result: model.RouteUnknownRepository}
	}

	return &model.RouteDecision{
		Result:       model.RouteDispatch,
		Deploy:       deploy,
		ArtifactsURL: event.ArtifactsURL,
	}
}
