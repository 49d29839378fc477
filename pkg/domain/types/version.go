package types

// Version is the application version, overridden at build time via -ldflags
var Version = "dev"

// UserAgent is sent with every request to the GitHub API
const UserAgent = "lanchanto"
