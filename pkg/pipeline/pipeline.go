// Package pipeline composes the harvest stages: enrich, dedup, validate,
// schedule, fetch, and sink. All per-item errors are contained at the item
// boundary; no item can abort the run.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/govdocs/harvester/models"
	"github.com/govdocs/harvester/pkg/downloader"
	"github.com/govdocs/harvester/pkg/manifest"
	"github.com/govdocs/harvester/pkg/sink"
	"github.com/govdocs/harvester/pkg/validate"
)

// Status classifies how an item left the pipeline.
type Status int

const (
	// StatusDownloaded: file fetched and written, manifest line appended.
	StatusDownloaded Status = iota
	// StatusWriteFailed: fetch succeeded but the file write did not; no
	// manifest line exists, so the next run retries.
	StatusWriteFailed
	// StatusSkippedPreviouslySeen: hash found in the previous manifest.
	StatusSkippedPreviouslySeen
	// StatusSkippedAccessRestricted: file requires CAC login.
	StatusSkippedAccessRestricted
	// StatusSkippedNoSupportedFormat: no pdf/html/zip entry.
	StatusSkippedNoSupportedFormat
	// StatusDeadLettered: fetch failed; a dead-letter record was written.
	StatusDeadLettered
	// StatusDropped: rejected before scheduling (missing/duplicate doc_name
	// or validation failure); the item leaves no trace beyond a log line.
	StatusDropped
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusWriteFailed:
		return "write_failed"
	case StatusSkippedPreviouslySeen:
		return "skipped_previously_seen"
	case StatusSkippedAccessRestricted:
		return "skipped_access_restricted"
	case StatusSkippedNoSupportedFormat:
		return "skipped_no_supported_format"
	case StatusDeadLettered:
		return "dead_lettered"
	case StatusDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Outcome is the explicit result of processing one raw item. Filtering
// stages report rejection through it instead of panicking or raising.
type Outcome struct {
	Status     Status
	Item       models.DocumentItem
	Reason     string
	FilePath   string
	StatusCode int
	FileSize   int64
}

// Pipeline owns all per-run state: the previous-hash set, the seen-name
// filter, the downloader, and the sink.
type Pipeline struct {
	config     *models.CrawlerConfig
	logger     *slog.Logger
	enricher   *Enricher
	dedup      *DedupFilter
	previous   *manifest.HashSet
	downloader *downloader.Downloader
	sink       *sink.Sink
}

// New builds a pipeline for one run. Unless filtering is disabled, the
// previous manifest is loaded up front; failure to read it is fatal here so
// the process can exit before any work begins, rather than silently
// re-downloading everything.
func New(logger *slog.Logger, config *models.CrawlerConfig, dl *downloader.Downloader, out *sink.Sink) (*Pipeline, error) {
	p := &Pipeline{
		config:     config,
		logger:     logger,
		enricher:   NewEnricher(config),
		dedup:      NewDedupFilter(),
		downloader: dl,
		sink:       out,
	}

	if config.DontFilterPreviousHashes {
		logger.Warn("Previous-hash filtering disabled, nothing will be filtered")
		p.previous = manifest.NewHashSet()
		return p, nil
	}

	set, err := manifest.LoadPreviousHashes(logger, config.PreviousManifest, config.Name)
	if err != nil {
		return nil, fmt.Errorf("cannot load previous manifest: %w", err)
	}
	p.previous = set
	return p, nil
}

// ProcessItem runs one raw item through every stage and returns its outcome.
// Safe for concurrent use; fetches for different items may be in flight at
// once while each item's own stages run sequentially.
func (p *Pipeline) ProcessItem(raw models.RawItem) Outcome {
	item, err := p.enricher.Enrich(raw)
	if err != nil {
		p.logger.Error("Failed to enrich item", "doc_name", raw.DocName, "error", err)
		return Outcome{Status: StatusDropped, Reason: err.Error()}
	}

	if err := p.dedup.Admit(item.DocName); err != nil {
		p.logger.Info("Dropping item", "doc_name", item.DocName, "reason", err)
		return Outcome{Status: StatusDropped, Item: item, Reason: err.Error()}
	}

	if err := validate.Item(item); err != nil {
		p.logger.Warn("Dropping item that failed validation", "doc_name", item.DocName, "error", err)
		return Outcome{Status: StatusDropped, Item: item, Reason: err.Error()}
	}

	decision, entry := downloader.Decide(item, p.previous)
	switch decision {
	case downloader.SkipPreviouslySeen:
		p.logger.Info("Skipping download, hash in previous manifest", "doc_name", item.DocName)
		p.sink.WriteOutput(item)
		return Outcome{Status: StatusSkippedPreviouslySeen, Item: item}

	case downloader.SkipAccessRestricted:
		p.logger.Info("Skipping download, requires cac login", "doc_name", item.DocName)
		p.sink.WriteOutput(item)
		return Outcome{Status: StatusSkippedAccessRestricted, Item: item}

	case downloader.SkipNoSupportedFormat:
		p.logger.Info("No supported downloadable item", "doc_name", item.DocName)
		p.sink.WriteOutput(item)
		return Outcome{Status: StatusSkippedNoSupportedFormat, Item: item}
	}

	res := p.downloader.Fetch(entry.WebURL)
	if !res.OK {
		p.sink.DeadLetter(item, res.FailureReason)
		// The item still flows to crawl output so downstream record-keeping
		// sees it, even though no file exists for it.
		p.sink.WriteOutput(item)
		return Outcome{Status: StatusDeadLettered, Item: item, Reason: res.FailureReason, StatusCode: res.StatusCode}
	}

	path, written := p.sink.SaveDownload(item, entry.DocType, res.Body)
	p.sink.WriteOutput(item)
	if !written {
		return Outcome{Status: StatusWriteFailed, Item: item, FilePath: path, StatusCode: res.StatusCode}
	}
	return Outcome{
		Status:     StatusDownloaded,
		Item:       item,
		FilePath:   path,
		StatusCode: res.StatusCode,
		FileSize:   int64(len(res.Body)),
	}
}
