package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
	Output string
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("LANCHANTO_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (text, json)",
			Value:       "text",
			Destination: &c.Format,
			Sources:     cli.EnvVars("LANCHANTO_LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output (stdout, stderr, or file path)",
			Value:       "stdout",
			Destination: &c.Output,
			Sources:     cli.EnvVars("LANCHANTO_LOG_OUTPUT"),
		},
	}
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Configure configures and returns a logger. Credentials are redacted from
// every log record.
func (c *Logger) Configure() (*slog.Logger, error) {
	level, ok := logLevels[strings.ToLower(c.Level)]
	if !ok {
		return nil, goerr.New("invalid log level", goerr.V("level", c.Level))
	}

	var w io.Writer
	colored := false
	switch c.Output {
	case "stdout", "":
		w = os.Stdout
		colored = !color.NoColor
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(c.Output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", c.Output))
		}
		w = f
	}

	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("GitHubWebhookSecret"),
		masq.WithFieldName("GitHubToken"),
		masq.WithFieldName("GitHubAppPrivateKey"),
	)

	var handler slog.Handler
	switch strings.ToLower(c.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		})
	case "text", "":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(colored),
			clog.WithReplaceAttr(filter),
		)
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", c.Format))
	}

	return slog.New(handler), nil
}
