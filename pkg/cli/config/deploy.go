package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Deploy holds the path of the deployment config file
type Deploy struct {
	Path string
}

// Flags returns CLI flags for deployment configuration
func (c *Deploy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the deployment config file (TOML)",
			Required:    true,
			Destination: &c.Path,
			Sources:     cli.EnvVars("LANCHANTO_CONFIG"),
		},
	}
}

// Load reads and validates the config file
func (c *Deploy) Load() (*model.Config, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open config file",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", c.Path))
	}
	defer f.Close()

	var cfg model.Config
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", c.Path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid config file",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", c.Path))
	}

	return &cfg, nil
}
