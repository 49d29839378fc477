package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Worker holds deploy worker configuration
type Worker struct {
	Workers         int
	QueueSize       int
	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Flags returns CLI flags for worker configuration
func (c *Worker) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "deploy-workers",
			Usage:       "Number of concurrent deploy workers",
			Value:       2,
			Destination: &c.Workers,
			Sources:     cli.EnvVars("LANCHANTO_DEPLOY_WORKERS"),
		},
		&cli.IntFlag{
			Name:        "deploy-queue-size",
			Usage:       "Maximum number of pending deploy jobs",
			Value:       16,
			Destination: &c.QueueSize,
			Sources:     cli.EnvVars("LANCHANTO_DEPLOY_QUEUE_SIZE"),
		},
		&cli.DurationFlag{
			Name:        "http-timeout",
			Usage:       "Timeout of each request to GitHub",
			Value:       10 * time.Minute,
			Destination: &c.HTTPTimeout,
			Sources:     cli.EnvVars("LANCHANTO_HTTP_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "How long to wait for running deploys on shutdown",
			Value:       30 * time.Second,
			Destination: &c.ShutdownTimeout,
			Sources:     cli.EnvVars("LANCHANTO_SHUTDOWN_TIMEOUT"),
		},
	}
}
