package model

// ExtractResult represents the result of a ZIP extraction into a target directory
type ExtractResult struct {
	TargetDir string   // Directory the archive was extracted into
	Files     []string // Archive names of written files
	Skipped   []string // Archive names rejected for escaping TargetDir
	Size      int64    // Total bytes written
}
