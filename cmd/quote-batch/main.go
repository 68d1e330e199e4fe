package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/startpacket/internal/async"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/ingest"
	"github.com/joseph-ayodele/startpacket/internal/pipeline"
	repo "github.com/joseph-ayodele/startpacket/internal/repository"
	svc "github.com/joseph-ayodele/startpacket/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir        = flag.String("dir", "", "directory to process quotes from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		workers    = flag.Int("workers", 0, "parallel workers (defaults to WORKERS)")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
		samples    = flag.Bool("samples", false, "load the sample territories first (TEST environment only)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "start-packets.xlsx")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		printError("Warning: .env: %v\n", err)
	}
	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.Driver = repo.DriverSQLite
		cfg.Database.DSN = "file:quote-batch?mode=memory&cache=shared"
	}
	if *workers > 0 {
		cfg.Ingest.Workers = *workers
	}
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()
	app, err := svc.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.DB.Close()

	if *samples {
		res, err := app.Territories.LoadSamples(ctx)
		if err != nil {
			logger.Error("failed to load sample territories", "error", err)
			os.Exit(1)
		}
		logger.Info(res.Message, "zips", res.TotalSampleZips)
	}

	var parsed, failed atomic.Int32
	queue := async.NewProcessorQueue(app.Processor, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Parser.Timeout),
		async.WithResultHandler(func(job async.Job, _ *pipeline.Outcome, err error) {
			if err != nil {
				failed.Add(1)
				printError("FAILED %s: %v\n", job.Path, err)
				return
			}
			parsed.Add(1)
		}),
	)

	logger.Info("starting batch", "dir", *dir, "workers", cfg.Ingest.Workers)
	res, err := ingest.NewService(queue, nil, logger).EnqueueDirectory(ctx, ingest.DirectoryRequest{
		RootPath:   *dir,
		SkipHidden: *skipHidden,
		Force:      true,
	})
	queue.Shutdown(ctx)
	if err != nil {
		logger.Error("directory ingest failed", "error", err)
		os.Exit(1)
	}
	for _, e := range res.Errors {
		printError("SKIPPED %s: %s\n", e.Path, e.Err)
	}

	xlsx, err := app.Exporter.ExportDraftsXLSX(ctx, int(res.Stats.Queued))
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d quote files: %d parsed, %d failed. Workbook written to %s\n",
		res.Stats.Queued, parsed.Load(), failed.Load(), *out)
	if failed.Load() > 0 {
		os.Exit(3)
	}
}
