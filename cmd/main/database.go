package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"stock-analysis/src/dataset"
	"stock-analysis/src/etl"
	"stock-analysis/src/sectors"

	"github.com/google/subcommands"
)

// -----------------------------------------------------------------------------
// load-db
// -----------------------------------------------------------------------------

type loadDBCmd struct {
	input string
}

func (*loadDBCmd) Name() string     { return "load-db" }
func (*loadDBCmd) Synopsis() string { return "append the combined CSV to the configured database table" }
func (*loadDBCmd) Usage() string {
	return `load-db [-input <file>]

  Reads the combined CSV produced by "run" and appends every row to the
  storage table in a single transaction. The table is created if missing.
`
}

func (c *loadDBCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", "", "Combined CSV to load (defaults to <etl.combined_dir>/"+etl.CombinedFileName+").")
}

func (c *loadDBCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, appLogger, err := setupConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	input := c.input
	if input == "" {
		input = filepath.Join(cfg.ETL.CombinedDir, etl.CombinedFileName)
	}
	rows, err := dataset.Load(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	db, err := setupDatabase(ctx, cfg, appLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	n, err := db.SaveStockPricesBulk(ctx, rows)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("inserted %d rows into %s\n", n, cfg.Storage.Table)
	return subcommands.ExitSuccess
}

// -----------------------------------------------------------------------------
// db-check
// -----------------------------------------------------------------------------

type dbCheckCmd struct {
	limit int
}

func (*dbCheckCmd) Name() string     { return "db-check" }
func (*dbCheckCmd) Synopsis() string { return "print a few stored rows" }
func (*dbCheckCmd) Usage() string {
	return `db-check [-n <rows>]
`
}

func (c *dbCheckCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 5, "Number of rows to print.")
}

func (c *dbCheckCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit < 1 {
		fmt.Fprintln(os.Stderr, "-n must be >= 1")
		return subcommands.ExitUsageError
	}
	cfg, appLogger, err := setupConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	db, err := setupDatabase(ctx, cfg, appLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	rows, err := db.SampleRows(ctx, c.limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tDATE\tCLOSE")
	for _, row := range rows {
		closePrice := "-"
		if row.Close != nil {
			closePrice = fmt.Sprintf("%.2f", *row.Close)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Symbol, row.Date.Format("2006-01-02"), closePrice)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

// -----------------------------------------------------------------------------
// sectors
// -----------------------------------------------------------------------------

type sectorsCmd struct {
	output string
}

func (*sectorsCmd) Name() string     { return "sectors" }
func (*sectorsCmd) Synopsis() string { return "generate the ticker to sector mapping CSV from stored tickers" }
func (*sectorsCmd) Usage() string {
	return `sectors [-o <file>]

  Reads the distinct tickers from the database and writes a mapping CSV.
  Tickers without a known sector are left out.
`
}

func (c *sectorsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output CSV (defaults to analytics.sector_mapping_path).")
}

func (c *sectorsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, appLogger, err := setupConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	output := c.output
	if output == "" {
		output = cfg.Analytics.SectorMappingPath
	}

	db, err := setupDatabase(ctx, cfg, appLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	tickers, err := db.DistinctTickers(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "no tickers stored, run load-db first")
		return subcommands.ExitFailure
	}

	mapping := sectors.Generate(tickers)
	if err := sectors.WriteCSV(output, mapping); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %d of %d tickers to %s\n", len(mapping), len(tickers), output)
	return subcommands.ExitSuccess
}
