// Package run implements the harvest run command: it drives a feed of raw
// crawler items through the pipeline with a pool of workers.
package run

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/govdocs/harvester/models"
	"github.com/govdocs/harvester/pkg/db"
	"github.com/govdocs/harvester/pkg/downloader"
	"github.com/govdocs/harvester/pkg/pipeline"
	"github.com/govdocs/harvester/pkg/sink"
)

func RunAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	config, err := models.LoadCrawlerConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load crawler config", "error", err)
		os.Exit(2)
	}
	applyFlagOverrides(c, config)

	items, err := ReadFeed(c.String("items"))
	if err != nil {
		logger.Error("failed to read item feed", "error", err)
		os.Exit(2)
	}
	logger.Info("Item feed loaded", "crawler", config.Name, "items", len(items))

	out, err := sink.New(logger, config.OutputDir, config.Name)
	if err != nil {
		logger.Error("failed to open output sink", "error", err)
		os.Exit(2)
	}
	defer out.Close()

	dl := downloader.New(logger, time.Duration(config.DownloadTimeoutSeconds)*time.Second)

	// Missing previous manifest with filtering enabled is fatal before any
	// item flows: proceeding unfiltered would re-download everything.
	pipe, err := pipeline.New(logger, config, dl, out)
	if err != nil {
		logger.Error("cannot start run", "error", err)
		os.Exit(1)
	}

	database := openBookkeeping(c, logger, config)
	var runID int64
	if database != nil {
		defer database.Close()
		runID, err = database.InsertRun(config.Name, config.OutputDir)
		if err != nil {
			logger.Warn("failed to insert run row", "error", err)
			database = nil
		}
	}

	outcomes := processAll(logger, config, pipe, database, runID, items)

	counts := tally(outcomes)
	if database != nil {
		if err := database.FinishRun(runID, counts); err != nil {
			logger.Warn("failed to finish run row", "error", err)
		}
	}

	logger.Info("Run complete",
		"crawler", config.Name,
		"items", counts.Items,
		"downloaded", counts.Downloaded,
		"skipped", counts.Skipped,
		"dead_lettered", counts.DeadLetters,
		"dropped", counts.Dropped,
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
	fmt.Printf("%d items: %d downloaded, %d skipped, %d dead-lettered, %d dropped\n",
		counts.Items, counts.Downloaded, counts.Skipped, counts.DeadLetters, counts.Dropped)
	fmt.Printf("manifest: %s\n", out.ManifestPath())

	return nil
}

func applyFlagOverrides(c *cli.Context, config *models.CrawlerConfig) {
	if c.IsSet("output-dir") {
		config.OutputDir = c.String("output-dir")
	}
	if c.IsSet("previous-manifest") {
		config.PreviousManifest = c.String("previous-manifest")
	}
	if c.Bool("dont-filter-previous-hashes") {
		config.DontFilterPreviousHashes = true
	}
	if c.IsSet("workers") {
		config.Workers = c.Int("workers")
	}
}

func openBookkeeping(c *cli.Context, logger *slog.Logger, config *models.CrawlerConfig) *db.DB {
	if c.Bool("no-db") {
		return nil
	}
	path := c.String("db")
	if path == "" {
		path = filepath.Join(config.OutputDir, db.DefaultDBName)
	}
	database, err := db.Open(path)
	if err != nil {
		// Bookkeeping is diagnostics, not correctness; the manifest is the
		// source of truth for dedup.
		logger.Warn("failed to open bookkeeping database, continuing without it", "path", path, "error", err)
		return nil
	}
	return database
}

// processAll fans the feed out to config.Workers workers. Concurrency exists
// across different items' fetches; each item's own stages run sequentially.
func processAll(logger *slog.Logger, config *models.CrawlerConfig, pipe *pipeline.Pipeline, database *db.DB, runID int64, items []models.RawItem) []pipeline.Outcome {
	var wg sync.WaitGroup
	jobs := make(chan models.RawItem, len(items))
	results := make(chan pipeline.Outcome, len(items))

	for w := 1; w <= config.Workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for raw := range jobs {
				outcome := pipe.ProcessItem(raw)
				recordOutcome(logger, database, runID, outcome)
				results <- outcome
			}
		}(w)
	}

	for _, raw := range items {
		jobs <- raw
	}
	close(jobs)

	wg.Wait()
	close(results)

	outcomes := make([]pipeline.Outcome, 0, len(items))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func recordOutcome(logger *slog.Logger, database *db.DB, runID int64, outcome pipeline.Outcome) {
	if database == nil || outcome.Item.DocName == "" {
		return
	}

	docID, err := database.UpsertDocument(
		outcome.Item.DocName, outcome.Item.CrawlerUsed,
		outcome.Item.VersionHash, outcome.Item.SourcePageURL,
	)
	if err != nil {
		logger.Warn("failed to upsert document row", "doc_name", outcome.Item.DocName, "error", err)
		return
	}
	err = database.RecordDownload(
		runID, docID, outcome.Status.String(),
		outcome.StatusCode, outcome.Reason, outcome.FilePath, outcome.FileSize,
	)
	if err != nil {
		logger.Warn("failed to record download row", "doc_name", outcome.Item.DocName, "error", err)
	}
}

func tally(outcomes []pipeline.Outcome) db.RunCounts {
	var counts db.RunCounts
	counts.Items = len(outcomes)
	for _, outcome := range outcomes {
		switch outcome.Status {
		case pipeline.StatusDownloaded, pipeline.StatusWriteFailed:
			counts.Downloaded++
		case pipeline.StatusSkippedPreviouslySeen,
			pipeline.StatusSkippedAccessRestricted,
			pipeline.StatusSkippedNoSupportedFormat:
			counts.Skipped++
		case pipeline.StatusDeadLettered:
			counts.DeadLetters++
		case pipeline.StatusDropped:
			counts.Dropped++
		}
	}
	return counts
}
