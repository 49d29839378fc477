package interfaces

import (
	"context"

	"github.com/m-mizutani/lanchanto/pkg/domain/model"
)

// WebhookUseCase resolves the deployment a webhook event applies to
type WebhookUseCase interface {
	// Route decides whether the event is ignored, unknown or dispatched
	Route(ctx context.Context, event *model.WorkflowRunEvent) *model.RouteDecision
}

// DeployUseCase fetches artifacts of a workflow run and extracts them
type DeployUseCase interface {
	// Enqueue schedules the job for a background worker and returns immediately
	Enqueue(ctx context.Context, job *model.DeployJob) error

	// Deploy runs the job synchronously
	Deploy(ctx context.Context, job *model.DeployJob) error
}
