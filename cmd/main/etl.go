package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-analysis/src/etl"

	"github.com/google/subcommands"
)

// -----------------------------------------------------------------------------

type runCmd struct {
	dataDir      string
	skipExisting bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "convert YAML price files into per-symbol, combined and monthly CSVs" }
func (*runCmd) Usage() string {
	return `run [-data <dir>] [-skip-existing]

  Walks the data directory for .yaml/.yml files, normalizes every record and
  writes one CSV per symbol, the combined CSV and one summary CSV per month.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataDir, "data", "", "Overrides etl.data_dir from the config.")
	f.BoolVar(&c.skipExisting, "skip-existing", false, "Skip records whose symbol and timestamp are already on disk.")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, appLogger, err := setupConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.dataDir != "" {
		cfg.ETL.DataDir = c.dataDir
	}
	if c.skipExisting {
		cfg.ETL.SkipExisting = true
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := etl.NewPipeline(cfg.MConfig, appLogger.Named("etl"))
	summary, err := pipeline.Run(ctx)
	if summary != nil {
		fmt.Printf("run %s: %d files, %d written, %d invalid, %d duplicate, %d artifacts in %v\n",
			summary.RunID,
			summary.FilesDiscovered,
			summary.RecordsWritten,
			summary.RecordsSkipped,
			summary.RecordsDuplicate,
			summary.ArtifactsWritten(),
			summary.Duration,
		)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
