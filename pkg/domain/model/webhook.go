package model

import (
	"time"

	"github.com/google/go-github/v75/github"
)

// ActionCompleted is the only workflow_run action that triggers a deployment
const ActionCompleted = "completed"

// WorkflowRunEvent holds the fields of a workflow_run webhook used for routing
type WorkflowRunEvent struct {
	ID           string    // Retrieved from X-GitHub-Delivery header
	Type         string    // Retrieved from X-GitHub-Event header, informational only
	Action       string    // e.g. requested, in_progress, completed
	Repository   string    // repository.full_name
	ArtifactsURL string    // workflow_run.artifacts_url
	ReceivedAt   time.Time // Time when the event was received
}

// NewWorkflowRunEvent extracts routing fields from a decoded payload
func NewWorkflowRunEvent(id, eventType string, payload *github.WorkflowRunEvent) *WorkflowRunEvent {
	return &WorkflowRunEvent{
		ID:           id,
		Type:         eventType,
		Action:       payload.GetAction(),
		Repository:   payload.GetRepo().GetFullName(),
		ArtifactsURL: payload.GetWorkflowRun().GetArtifactsURL(),
		ReceivedAt:   time.Now(),
	}
}

// RouteResult is the outcome of routing a webhook event
type RouteResult int

const (
	RouteIgnore RouteResult = iota
	RouteUnknownRepository
	RouteDispatch
)

func (r RouteResult) String() string {
	switch r {
	case RouteIgnore:
		return "ignore"
	case RouteUnknownRepository:
		return "unknown_repository"
	case RouteDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// RouteDecision is produced by the router. Deploy and ArtifactsURL are set
// only for RouteDispatch.
type RouteDecision struct {
	Result       RouteResult
	Deploy       *Deploy
	ArtifactsURL string
}

// WebhookResponse is the JSON body returned to the webhook sender
type WebhookResponse struct {
	Error *string `json:"error"`
}
