package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/interfaces"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

// GitHub caps webhook payloads at 25MB
const maxPayloadSize = 25 << 20

// Error messages returned to the webhook sender
const (
	msgInvalidCredential = "invalid credential"
	msgInvalidPayload    = "invalid payload"
	msgUnknownRepository = "unknown repository"
	msgQueueFull         = "deploy queue is full"
	msgUnavailable       = "service unavailable"
)

// WebhookHandler handles GitHub workflow_run webhooks
type WebhookHandler struct {
	secret    []byte
	webhookUC interfaces.WebhookUseCase
	deployUC  interfaces.DeployUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase, deployUC interfaces.DeployUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:    []byte(secret),
		webhookUC: webhookUC,
		deployUC:  deployUC,
	}
}

// Handle verifies, routes and dispatches a webhook. The response never waits
// for the deployment itself.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadSize))
	if err != nil {
		logger.Warn("Failed to read request body", "error", err)
		writeResponse(w, r, msgInvalidPayload, http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := VerifySignature(h.secret, r.Header, body); err != nil {
		logger.Warn("Invalid webhook signature", "error", err)
		writeResponse(w, r, msgInvalidCredential, http.StatusForbidden)
		return
	}

	var payload github.WorkflowRunEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("Failed to parse webhook payload",
			"error", goerr.Wrap(err, "invalid JSON payload", goerr.T(types.ErrTagInvalidPayload)))
		writeResponse(w, r, msgInvalidPayload, http.StatusBadRequest)
		return
	}

	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	event := model.NewWorkflowRunEvent(deliveryID, r.Header.Get("X-GitHub-Event"), &payload)

	decision := h.webhookUC.Route(ctx, event)
	switch decision.Result {
	case model.RouteIgnore:
		writeResponse(w, r, "", http.StatusOK)

	case model.RouteUnknownRepository:
		writeResponse(w, r, msgUnknownRepository, http.StatusBadRequest)

	case model.RouteDispatch:
		job := &model.DeployJob{
			ID:           event.ID,
			Repository:   event.Repository,
			ArtifactsURL: decision.ArtifactsURL,
			Deploy:       decision.Deploy,
		}
		if err := h.deployUC.Enqueue(ctx, job); err != nil {
			logger.Warn("Dropped deploy job", "error", err, "delivery_id", job.ID)
			if goerr.HasTag(err, types.ErrTagQueueFull) {
				writeResponse(w, r, msgQueueFull, http.StatusServiceUnavailable)
			} else {
				writeResponse(w, r, msgUnavailable, http.StatusServiceUnavailable)
			}
			return
		}
		writeResponse(w, r, "", http.StatusOK)
	}
}
