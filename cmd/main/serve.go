package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-analysis/src/interfaces"
	"stock-analysis/src/logger"
	"stock-analysis/src/server"

	"github.com/google/subcommands"
)

// -----------------------------------------------------------------------------

type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the analytics API and websocket feed" }
func (*serveCmd) Usage() string {
	return `serve [-port <port>]

  Loads the combined CSV and the sector mapping, then serves the analytics
  views under /api and pushes market overview updates on /ws.
  POST /api/reload re-reads both files without a restart.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Overrides the port from the config.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, appLogger, err := setupConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.port != 0 {
		cfg.Port = c.port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewAnalyticsServer(cfg.MConfig, appLogger.Named("server"))
	if err := runServer(ctx, srv, appLogger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// -----------------------------------------------------------------------------

// runServer starts srv and blocks until it fails or ctx is cancelled.
func runServer(ctx context.Context, srv interfaces.IDataExchanger, appLogger *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			// Listen failures are fatal
			appLogger.Critical("Server failed: %v", err)
		}
		return nil
	case <-ctx.Done():
		appLogger.Info("Shutting down...")
		if err := srv.Stop(); err != nil {
			appLogger.Error("Shutdown error: %v", err)
			return err
		}
		return <-errCh
	}
}
