package model

// DeployJob is a dispatched deployment waiting for a worker
type DeployJob struct {
	ID           string // delivery ID of the webhook that created the job
	Repository   string
	ArtifactsURL string
	Deploy       *Deploy
}

// ArtifactEntry is a single artifact in the listing of a workflow run
type ArtifactEntry struct {
	Name               string
	ArchiveDownloadURL string
}
