package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/lanchanto/pkg/cli/config"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdCheck() *cli.Command {
	var (
		githubCfg config.GitHub
		deployCfg config.Deploy
	)

	var flags []cli.Flag
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, deployCfg.Flags()...)

	return &cli.Command{
		Name:  "check",
		Usage: "Validate the config file and print the routing table",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := deployCfg.Load()
			if err != nil {
				return err
			}
			cfg.Credential = cfg.Credential.Merge(githubCfg.Credential())

			var w io.Writer = os.Stdout
			if c.Root().Writer != nil {
				w = c.Root().Writer
			}
			printRoutes(w, cfg)
			return nil
		},
	}
}

func printRoutes(w io.Writer, cfg *model.Config) {
	bold := color.New(color.Bold)
	repo := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	ng := color.New(color.FgRed)

	status := func(name string, set bool) {
		if set {
			ok.Fprintf(w, "  ✔ %s\n", name)
		} else {
			ng.Fprintf(w, "  ✘ %s\n", name)
		}
	}

	bold.Fprintln(w, "Credentials")
	status("webhook secret", cfg.Credential.GitHubWebhookSecret != "")
	if cfg.Credential.HasApp() {
		status(fmt.Sprintf("GitHub App (app_id=%d, installation_id=%d)",
			cfg.Credential.GitHubAppID, cfg.Credential.GitHubAppInstallationID), true)
	} else {
		status("API token", cfg.Credential.GitHubToken != "")
	}

	fmt.Fprintln(w)
	bold.Fprintf(w, "Deploys (%d)\n", len(cfg.Deploy))
	for _, d := range cfg.Deploy {
		repo.Fprintf(w, "  %s\n", d.Repository)
		if len(d.Artifact) == 0 {
			ng.Fprintln(w, "    (no artifact)")
		}
		for _, a := range d.Artifact {
			fmt.Fprintf(w, "    %s -> %s\n", a.Name, a.Target)
		}
	}
}
