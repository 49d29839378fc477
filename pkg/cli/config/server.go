package config

import (
	"net"
	"strconv"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr string
	Port int
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "0.0.0.0:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("LANCHANTO_ADDR"),
		},
		&cli.IntFlag{
			Name:        "port",
			Usage:       "Override the port of --addr",
			Destination: &c.Port,
			Sources:     cli.EnvVars("LANCHANTO_PORT", "PORT"),
		},
	}
}

// ListenAddr returns Addr with its port replaced by Port when Port is set
func (c *Server) ListenAddr() string {
	if c.Port == 0 {
		return c.Addr
	}

	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		host = c.Addr
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}
