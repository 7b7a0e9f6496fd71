// load-assembly-report parses NCBI assembly report files and stores them.
//
// Usage: go run ./scripts/load-assembly-report [-dry-run] [-workers N] <report-file>...
//
// A path of "-" reads from stdin. Gzip-compressed files are detected automatically.
//
// Database connection: Uses standard PG* environment variables
//
// Flags:
//
//	-dry-run   Parse and print a JSON summary of each report without storing it
//	-workers   Number of reports loaded concurrently (default 1)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/pkg/assemblyreport"
	"github.com/ekaya-inc/contig-alias/pkg/config"
	"github.com/ekaya-inc/contig-alias/pkg/database"
	"github.com/ekaya-inc/contig-alias/pkg/logging"
	"github.com/ekaya-inc/contig-alias/pkg/models"
	"github.com/ekaya-inc/contig-alias/pkg/repositories"
	"github.com/ekaya-inc/contig-alias/pkg/retry"
	"github.com/ekaya-inc/contig-alias/pkg/services"
	"github.com/ekaya-inc/contig-alias/pkg/services/workqueue"
)

// summary is printed for every report in dry-run mode.
type summary struct {
	File        string  `json:"file"`
	Name        string  `json:"name"`
	Organism    string  `json:"organism"`
	Taxid       int64   `json:"taxid"`
	Genbank     *string `json:"genbank,omitempty"`
	Refseq      *string `json:"refseq,omitempty"`
	Chromosomes int     `json:"chromosomes"`
	Scaffolds   int     `json:"scaffolds"`
}

func main() {
	os.Exit(run())
}

func run() int {
	dryRun := flag.Bool("dry-run", false, "Parse and summarize reports without storing them")
	workers := flag.Int("workers", 1, "Number of reports loaded concurrently")
	flag.Parse()

	paths := flag.Args()
	if len(paths) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-dry-run] [-workers N] <report-file>...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		fmt.Fprintf(os.Stderr, "  -dry-run  Parse and summarize reports without storing them\n")
		fmt.Fprintf(os.Stderr, "  -workers  Number of reports loaded concurrently (default 1)\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewLogger("local")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	load := summarize
	if !*dryRun {
		ingest, cleanup, err := connect(ctx, logger, *workers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		defer cleanup()
		load = ingest
	}

	// Dry-run output goes to stdout in argument order, so it stays serial.
	concurrency := *workers
	if *dryRun {
		concurrency = 1
	}
	queue := workqueue.New(logger, workqueue.WithConcurrency(concurrency))
	for _, path := range paths {
		queue.Enqueue(workqueue.NewFuncTask(path, func(ctx context.Context) error {
			return load(ctx, path)
		}))
	}

	if err := queue.Wait(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if ctx.Err() != nil {
			return 1
		}
	}

	if failed := queue.Counts()[workqueue.TaskStatusFailed]; failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d of %d report(s) failed\n", failed, len(paths))
		return 1
	}
	return 0
}

func summarize(_ context.Context, path string) error {
	f, err := assemblyreport.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	asm, err := assemblyreport.Read(f)
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(newSummary(path, asm))
}

func newSummary(path string, asm *models.Assembly) summary {
	return summary{
		File:        path,
		Name:        asm.Name,
		Organism:    asm.Organism,
		Taxid:       asm.Taxid,
		Genbank:     asm.Genbank,
		Refseq:      asm.Refseq,
		Chromosomes: len(asm.Chromosomes),
		Scaffolds:   len(asm.Scaffolds),
	}
}

// connect opens the database from PG* variables and returns a loader that
// stores each report through the ingestion service.
func connect(ctx context.Context, logger *zap.Logger, workers int) (func(context.Context, string) error, func(), error) {
	var dbCfg config.DatabaseConfig
	if err := cleanenv.ReadEnv(&dbCfg); err != nil {
		return nil, nil, fmt.Errorf("failed to read database environment: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	db, err := retry.DoWithResult(ctx, retry.StartupConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            dbCfg.URL(),
			MaxConnections: int32(workers) + 1,
		})
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %s", logging.SanitizeError(err))
	}

	scopes := database.NewScopeProvider(db)
	svc := services.NewIngestionService(repositories.NewAssemblyRepository(), nil, logger)

	load := func(ctx context.Context, path string) error {
		f, err := assemblyreport.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		scopedCtx, release, err := scopes.WithScope(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire connection: %w", err)
		}
		defer release()

		asm, err := svc.Ingest(scopedCtx, f)
		if err != nil {
			return err
		}
		logger.Info("Stored assembly report",
			zap.String("file", path),
			zap.String("id", asm.ID.String()),
			zap.Int("sequences", asm.SequenceCount()))
		return nil
	}

	return load, db.Close, nil
}
