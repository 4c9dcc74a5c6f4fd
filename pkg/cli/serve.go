package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/slotline-io/slotline/pkg/cli/config"
	httpctrl "github.com/slotline-io/slotline/pkg/controller/http"
	"github.com/slotline-io/slotline/pkg/usecase"
	"github.com/slotline-io/slotline/pkg/utils/logging"
	"github.com/slotline-io/slotline/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var orgCfg config.Org
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SLOTLINE_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, orgCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			org, err := orgCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load organization configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			if orgCfg.Configured() {
				if err := org.Seed(ctx, repo); err != nil {
					return goerr.Wrap(err, "failed to seed directory from configuration")
				}
				logging.Default().Info("Directory seeded from configuration",
					"teams", len(org.Teams),
					"employees", len(org.Employees),
					"absence_types", len(org.AbsenceTypes),
				)
			}

			uc := usecase.New(repo, usecase.WithOrgConfig(org.ToDomainOrgConfig()))

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
