// Package sink persists the outcome of each processed item: downloaded files
// with metadata sidecars, manifest lines, dead-letter records, and the crawl
// output stream.
package sink

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/govdocs/harvester/models"
	"github.com/govdocs/harvester/pkg/manifest"
	"github.com/govdocs/harvester/pkg/storage"
)

// File names inside the output directory.
const (
	ManifestFileName  = "manifest.json"
	DeadQueueFileName = "dead_queue.json"
)

// Sink owns the run's append-only writers. All of its write paths are
// best-effort: a bad path or disk hiccup is logged and must not abort a
// multi-hour crawl.
type Sink struct {
	outputDir string
	storage   *storage.Storage
	manifest  *manifest.Appender
	dead      *manifest.Appender
	output    *manifest.Appender
	logger    *slog.Logger
}

// New creates the output directory and opens the run's manifest, dead-letter,
// and crawl-output files in append mode.
func New(logger *slog.Logger, outputDir string, crawlerName string) (*Sink, error) {
	s := &Sink{
		outputDir: outputDir,
		storage:   &storage.Storage{},
		logger:    logger,
	}

	if err := s.storage.EnsureDir(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var err error
	if s.manifest, err = manifest.OpenAppender(filepath.Join(outputDir, ManifestFileName)); err != nil {
		return nil, err
	}
	if s.dead, err = manifest.OpenAppender(filepath.Join(outputDir, DeadQueueFileName)); err != nil {
		s.manifest.Close()
		return nil, err
	}
	if s.output, err = manifest.OpenAppender(filepath.Join(outputDir, crawlerName+".json")); err != nil {
		s.manifest.Close()
		s.dead.Close()
		return nil, err
	}

	return s, nil
}

// ManifestPath returns the run manifest location.
func (s *Sink) ManifestPath() string {
	return s.manifest.Path()
}

// SaveDownload writes the fetched body to {output_dir}/{doc_name}.{ext} plus
// a .metadata sidecar holding the full item, then appends a manifest line.
// The manifest line is written only if the file itself was written; sidecar
// and manifest failures are logged, not returned. It reports the file path
// and whether the file landed on disk.
func (s *Sink) SaveDownload(item models.DocumentItem, extension string, body []byte) (string, bool) {
	filePath := filepath.Join(s.outputDir, fmt.Sprintf("%s.%s", item.DocName, extension))

	if err := s.storage.SaveFile(filePath, body); err != nil {
		s.logger.Error("Failed to write downloaded file", "path", filePath, "error", err)
		return filePath, false
	}
	s.logger.Info("Downloaded", "path", filePath, "bytes", len(body))

	metadataPath := filePath + ".metadata"
	metadata, err := json.Marshal(item)
	if err != nil {
		s.logger.Error("Failed to serialize metadata", "path", metadataPath, "error", err)
	} else if err := s.storage.SaveFile(metadataPath, metadata); err != nil {
		s.logger.Error("Failed to write metadata", "path", metadataPath, "error", err)
	}

	if err := s.manifest.AppendJSON(manifest.RecordFor(item)); err != nil {
		s.logger.Error("Failed to write to manifest file", "path", s.manifest.Path(), "error", err)
	}

	return filePath, true
}

// DeadLetter appends a dead-letter record for a failed fetch. Best-effort
// diagnostics; failures are only logged.
func (s *Sink) DeadLetter(item models.DocumentItem, reason string) {
	rec := manifest.DeadLetter{Document: item, FailureReason: reason}
	if err := s.dead.AppendJSON(rec); err != nil {
		s.logger.Error("Failed to write to dead_queue file", "path", s.dead.Path(), "error", err)
	}
}

// WriteOutput appends the completed item to the crawl output stream. Every
// item that survives enrichment and dedup lands here, downloaded or not.
func (s *Sink) WriteOutput(item models.DocumentItem) {
	if err := s.output.AppendJSON(item); err != nil {
		s.logger.Error("Failed to write crawl output", "path", s.output.Path(), "error", err)
	}
}

// Close closes all writers.
func (s *Sink) Close() {
	s.manifest.Close()
	s.dead.Close()
	s.output.Close()
}
