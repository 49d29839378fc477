package types

import "github.com/m-mizutani/goerr/v2"

// Signature verification failures. All of them are reported to the webhook
// sender as an invalid credential.
var (
	ErrTagEmptySecret        = goerr.NewTag("empty_secret")
	ErrTagMissingSignature   = goerr.NewTag("missing_signature")
	ErrTagMalformedSignature = goerr.NewTag("malformed_signature")
	ErrTagSignatureMismatch  = goerr.NewTag("signature_mismatch")
)

// Request failures, answered with 400
var (
	ErrTagInvalidPayload    = goerr.NewTag("invalid_payload")
	ErrTagUnknownRepository = goerr.NewTag("unknown_repository")
)

// Deployment failures. They happen after the webhook has been answered and
// are only visible in logs.
var (
	ErrTagMissingToken     = goerr.NewTag("missing_token")
	ErrTagListArtifacts    = goerr.NewTag("list_artifacts")
	ErrTagDownloadArtifact = goerr.NewTag("download_artifact")
	ErrTagCorruptArchive   = goerr.NewTag("corrupt_archive")
)

var (
	ErrTagQueueFull     = goerr.NewTag("queue_full")
	ErrTagQueueClosed   = goerr.NewTag("queue_closed")
	ErrTagInvalidConfig = goerr.NewTag("invalid_config")
)
