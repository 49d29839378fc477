package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN. Error reporting is disabled if empty",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("LANCHANTO_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Destination: &c.Env,
			Sources:     cli.EnvVars("LANCHANTO_SENTRY_ENV"),
		},
	}
}

// Enabled reports whether a DSN is configured
func (c *Sentry) Enabled() bool {
	return c.DSN != ""
}

// Configure initializes the global Sentry client. It does nothing without DSN.
func (c *Sentry) Configure() error {
	if !c.Enabled() {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry")
	}
	return nil
}

// Flush waits for buffered events to be sent
func (c *Sentry) Flush(timeout time.Duration) {
	if c.Enabled() {
		sentry.Flush(timeout)
	}
}
