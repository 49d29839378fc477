package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/cli/config"
	controller "github.com/m-mizutani/lanchanto/pkg/controller/http"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
	"github.com/m-mizutani/lanchanto/pkg/infra/github"
	"github.com/m-mizutani/lanchanto/pkg/usecase"
	"github.com/m-mizutani/lanchanto/pkg/utils/async"
	"github.com/m-mizutani/lanchanto/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		deployCfg config.Deploy
		workerCfg config.Worker
		sentryCfg config.Sentry
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, deployCfg.Flags()...)
	flags = append(flags, workerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			cfg, err := deployCfg.Load()
			if err != nil {
				return err
			}
			cfg.Credential = cfg.Credential.Merge(githubCfg.Credential())
			if cfg.Credential.GitHubWebhookSecret == "" {
				return goerr.New("webhook secret is not configured", goerr.T(types.ErrTagInvalidConfig))
			}

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			defer sentryCfg.Flush(2 * time.Second)

			tokens, err := github.NewTokenProvider(cfg.Credential)
			if err != nil {
				return err
			}
			client := github.NewClient(github.WithTimeout(workerCfg.HTTPTimeout))

			queue := async.NewQueue(ctx, workerCfg.Workers, workerCfg.QueueSize,
				async.WithErrorHandler(func(ctx context.Context, name string, err error) {
					errutil.Handle(ctx, "deploy failed", goerr.Wrap(err, "deploy job failed", goerr.V("delivery_id", name)))
				}),
			)

			deployUC := usecase.NewDeploy(client, tokens, queue)
			webhookUC := usecase.NewWebhook(cfg)

			addr := serverCfg.ListenAddr()
			logger.Info("Starting lanchanto server",
				slog.String("addr", addr),
				slog.Int("deploys", len(cfg.Deploy)),
				slog.Int("workers", workerCfg.Workers),
				slog.Int("queue_size", workerCfg.QueueSize),
				slog.Bool("github_app", cfg.Credential.HasApp()),
				slog.Bool("sentry", sentryCfg.Enabled()),
			)

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				deployUC,
				controller.WithAddr(addr),
				controller.WithWebhookSecret(cfg.Credential.GitHubWebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			var runErr error
			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serverErr:
				runErr = goerr.Wrap(err, "HTTP server error", goerr.V("addr", addr))
			}

			// Stop accepting webhooks first so that no job is enqueued after Close
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown server gracefully", slog.Any("error", err))
			}

			drainCtx, cancelDrain := context.WithTimeout(context.WithoutCancel(ctx), workerCfg.ShutdownTimeout)
			defer cancelDrain()
			if err := queue.Close(drainCtx); err != nil {
				logger.Error("deploy workers did not finish", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return runErr
		},
	}
}
