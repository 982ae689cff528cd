// Command vocab-import loads words from an .xlsx or .csv file into the catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/terra-clan/vocab-trainer/internal/config"
	"github.com/terra-clan/vocab-trainer/internal/importer"
	"github.com/terra-clan/vocab-trainer/internal/seed"
	"github.com/terra-clan/vocab-trainer/internal/storage"
)

type options struct {
	file       string
	sheet      string
	startRow   int
	category   string
	driver     string
	dsn        string
	sqlitePath string
	dryRun     bool
	verbose    bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	defaults := importer.DefaultConfig()

	fs := pflag.NewFlagSet("vocab-import", pflag.ContinueOnError)
	fs.StringVarP(&opts.file, "file", "f", "", "spreadsheet (.xlsx) or CSV file to import")
	fs.StringVar(&opts.sheet, "sheet", "", "sheet name (default: first sheet)")
	fs.IntVar(&opts.startRow, "start-row", defaults.StartRow, "first data row, 1-based")
	fs.StringVarP(&opts.category, "category", "c", defaults.DefaultCategory, "category for rows without one")
	fs.StringVar(&opts.driver, "driver", config.DriverSQLite, "target store: postgres or sqlite")
	fs.StringVar(&opts.dsn, "dsn", os.Getenv("DATABASE_DSN"), "PostgreSQL DSN")
	fs.StringVar(&opts.sqlitePath, "sqlite-path", "vocab.db", "SQLite database file")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "parse and report without writing")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log every rejected row")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.file == "" {
		return nil, errors.New("--file is required")
	}

	return opts, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg := importer.DefaultConfig()
	cfg.Path = opts.file
	cfg.Sheet = opts.sheet
	cfg.StartRow = opts.startRow
	cfg.DefaultCategory = opts.category

	result, err := importer.ReadFile(cfg)
	if err != nil {
		return err
	}

	if opts.verbose {
		for _, msg := range result.Errors {
			slog.Warn("row rejected", "detail", msg)
		}
	}

	fmt.Fprintf(out, "processed: %d, valid: %d, rejected: %d, empty: %d\n",
		result.Processed, len(result.Words), len(result.Errors), result.Skipped)

	if opts.dryRun || len(result.Words) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	target, closeTarget, err := openTarget(ctx, opts)
	if err != nil {
		return err
	}
	defer closeTarget()

	if err := target.InsertWords(ctx, result.Words); err != nil {
		return fmt.Errorf("failed to import words: %w", err)
	}

	fmt.Fprintf(out, "imported %d words into %s\n", len(result.Words), opts.driver)
	return nil
}

func openTarget(ctx context.Context, opts *options) (seed.Target, func(), error) {
	switch opts.driver {
	case config.DriverPostgres:
		if opts.dsn == "" {
			return nil, nil, errors.New("--dsn is required for postgres")
		}
		if err := storage.MigrateFromDSN(ctx, opts.dsn, ""); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		target, err := seed.NewPostgresTarget(ctx, opts.dsn)
		if err != nil {
			return nil, nil, err
		}
		return target, func() { target.Close() }, nil

	case config.DriverSQLite:
		repo, err := storage.NewSQLiteRepository(ctx, opts.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported driver %q", opts.driver)
	}
}
