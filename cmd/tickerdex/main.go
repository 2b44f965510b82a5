// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/tickerdex"
	"github.com/poiesic/tickerdex/config"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tickerdex",
		Usage: "Ticker and company name lookup over a local security catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides database.path)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Load securities from a CSV file into the catalog",
				ArgsUsage: "<file.csv>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Skip rows committed by a previous run of the same file",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of securities to write in each batch",
						Value: config.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of batches written concurrently",
						Value: config.DefaultPoolSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N rows",
						Value: config.DefaultReportInterval,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed batch writes",
						Value: config.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay between retry attempts",
						Value: config.DefaultRetryDelay,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Typeahead search by ticker symbol or company name",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags:     append(outputFlags(), limitFlag()),
			},
			{
				Name:   "advanced",
				Usage:  "Search by any combination of symbol, name, exchange, country and currency",
				Action: advancedCommand,
				Flags: append(outputFlags(), limitFlag(),
					&cli.StringFlag{Name: "symbol", Usage: "Symbol must contain this text"},
					&cli.StringFlag{Name: "name", Usage: "Company name must contain this text"},
					&cli.StringFlag{Name: "exchange", Usage: "Exchange must contain this text"},
					&cli.StringFlag{Name: "country", Usage: "Country must contain this text"},
					&cli.StringFlag{Name: "currency", Usage: "Currency must contain this text"},
				),
			},
			{
				Name:      "reference",
				Usage:     "List or look up currencies, exchanges and security types",
				ArgsUsage: "<currency|exchange|type> [code]",
				Action:    referenceCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Write JSON output"},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rewrite every security to rebuild its indexes and refresh reference data",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of securities to rewrite in each batch",
						Value: config.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N securities",
						Value: config.DefaultReportInterval,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show catalog counts and the ingestion checkpoint for a file",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Write JSON output"},
					&cli.StringFlag{Name: "source", Usage: "CSV file whose checkpoint should be shown"},
				},
			},
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Write JSON output"},
		&cli.BoolFlag{Name: "explain", Usage: "Show which match strategies each result satisfies"},
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of results (0 uses the configured default)",
	}
}

// loadConfig reads --config when given and applies command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
		cfg.Database.InMemory = false
	}
	if c.IsSet("batch-size") {
		cfg.Ingestion.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("pool-size") {
		cfg.Ingestion.PoolSize = c.Int("pool-size")
	}
	if c.IsSet("report-interval") {
		cfg.Ingestion.ReportInterval = c.Int("report-interval")
	}
	if c.IsSet("max-retries") {
		cfg.Ingestion.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		cfg.Ingestion.RetryDelay = c.Duration("retry-delay")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(c *cli.Context) (*tickerdex.Database, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	db, err := tickerdex.NewDatabase("", tickerdex.WithConfig(cfg), tickerdex.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one CSV file argument")
	}
	for _, name := range []string{"batch-size", "report-interval", "max-retries"} {
		if c.IsSet(name) && c.Int(name) <= 0 {
			return fmt.Errorf("%s must be greater than 0", name)
		}
	}

	path, err := filepath.Abs(c.Args().First())
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()

	source, err := ingestion.NewCSVSource(path, f)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := db.Config()
	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithProgress(c.App.ErrWriter, cfg.Ingestion.ReportInterval),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(c.App.ErrWriter, "Source: %s\n", path)
	fmt.Fprintln(c.App.ErrWriter)

	report, err := pipeline.Run(c.Context, source, &ingestion.RunOptions{Resume: c.Bool("resume")})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Run %s: %d rows, %d skipped, %d accepted, %d rejected, %d references in %s\n",
		report.RunID, report.Rows, report.Skipped, report.Accepted, report.Rejected,
		report.References, report.Elapsed.Round(time.Millisecond))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	suggestions, err := searcher.Suggest(c.Context, query, c.Int("limit"))
	if err != nil {
		return err
	}
	return writeSuggestions(c, suggestions)
}

func advancedCommand(c *cli.Context) error {
	criteria := core.Criteria{
		Symbol:      c.String("symbol"),
		CompanyName: c.String("name"),
		Exchange:    c.String("exchange"),
		Country:     c.String("country"),
		Currency:    c.String("currency"),
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	suggestions, err := searcher.SuggestByCriteria(c.Context, criteria, c.Int("limit"))
	if err != nil {
		return err
	}
	return writeSuggestions(c, suggestions)
}

func referenceCommand(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return fmt.Errorf("expected a reference kind and an optional code")
	}
	kind, ok := core.ParseReferenceKind(c.Args().Get(0))
	if !ok {
		return fmt.Errorf("unknown reference kind %q: must be one of currency, exchange, type", c.Args().Get(0))
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	refs := db.ReferenceRepository()
	var entries []*core.ReferenceEntry
	if c.NArg() == 2 {
		entry, err := refs.GetReference(c.Context, kind, c.Args().Get(1))
		if err != nil {
			return err
		}
		entries = []*core.ReferenceEntry{entry}
	} else {
		entries, err = refs.ListReferences(c.Context, kind)
		if err != nil {
			return err
		}
	}
	return writeReferences(c, entries)
}

func reindexCommand(c *cli.Context) error {
	for _, name := range []string{"batch-size", "report-interval"} {
		if c.IsSet(name) && c.Int(name) <= 0 {
			return fmt.Errorf("%s must be greater than 0", name)
		}
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reindexer, err := db.NewReindexer(c.App.ErrWriter)
	if err != nil {
		return err
	}
	report, err := reindexer.Run(c.Context)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Reindexed %d securities in %d batches, %d references refreshed in %s\n",
		report.Securities, report.Batches, report.References, report.Elapsed.Round(time.Millisecond))
	return nil
}

func statusCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := db.Status(c.Context)
	if err != nil {
		return err
	}

	var checkpoint *core.Checkpoint
	if source := c.String("source"); source != "" {
		path, err := filepath.Abs(source)
		if err != nil {
			return err
		}
		checkpoint, err = db.CheckpointRepository().LoadCheckpoint(c.Context, path)
		if err != nil {
			return err
		}
	}
	return writeStatus(c, status, checkpoint)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
