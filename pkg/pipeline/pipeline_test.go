package pipeline

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/govdocs/harvester/models"
	"github.com/govdocs/harvester/pkg/downloader"
	"github.com/govdocs/harvester/pkg/sink"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestPipeline builds a full pipeline over a temp output dir. The previous
// manifest is seeded with the given lines (empty string = empty manifest).
func newTestPipeline(t *testing.T, previousManifest string) (*Pipeline, string) {
	t.Helper()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "previous-manifest.json")
	if err := os.WriteFile(manifestPath, []byte(previousManifest), 0644); err != nil {
		t.Fatalf("failed to seed previous manifest: %v", err)
	}

	outputDir := filepath.Join(dir, "output")
	config := &models.CrawlerConfig{
		Name:             "dod_issuances",
		OutputDir:        outputDir,
		PreviousManifest: manifestPath,
		DocType:          "Directive",
		SourcePageURL:    "https://www.esd.whs.mil/Directives/",
		Workers:          2,
	}

	logger := discardLogger()
	out, err := sink.New(logger, outputDir, config.Name)
	if err != nil {
		t.Fatalf("sink.New() error = %v", err)
	}
	t.Cleanup(out.Close)

	dl := downloader.New(logger, 5*time.Second)
	p, err := New(logger, config, dl, out)
	if err != nil {
		t.Fatalf("pipeline.New() error = %v", err)
	}
	return p, outputDir
}

func rawItemWithURL(name, url, ext string) models.RawItem {
	return models.RawItem{
		DocName:  name,
		DocTitle: name + " title",
		DownloadableItems: []models.DownloadableItem{
			{DocType: ext, WebURL: url},
		},
		VersionHashRawData: map[string]string{"doc_title": name + " title"},
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

func TestProcessItem_SuccessfulDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF content"))
	}))
	defer srv.Close()

	p, outputDir := newTestPipeline(t, "")
	outcome := p.ProcessItem(rawItemWithURL("DoDD 5000.01", srv.URL+"/d.pdf", "pdf"))

	if outcome.Status != StatusDownloaded {
		t.Fatalf("status = %v, want StatusDownloaded (reason %q)", outcome.Status, outcome.Reason)
	}
	if outcome.FilePath != filepath.Join(outputDir, "DoDD 5000.01.pdf") {
		t.Errorf("file path = %q", outcome.FilePath)
	}
	if _, err := os.Stat(outcome.FilePath); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
	if _, err := os.Stat(outcome.FilePath + ".metadata"); err != nil {
		t.Errorf("metadata sidecar missing: %v", err)
	}
	if n := countLines(t, filepath.Join(outputDir, sink.ManifestFileName)); n != 1 {
		t.Errorf("manifest lines = %d, want 1", n)
	}
	if n := countLines(t, filepath.Join(outputDir, sink.DeadQueueFileName)); n != 0 {
		t.Errorf("dead_queue lines = %d, want 0", n)
	}
}

func TestProcessItem_NotFoundDeadLetters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p, outputDir := newTestPipeline(t, "")
	outcome := p.ProcessItem(rawItemWithURL("DoDD 5000.01", srv.URL+"/d.pdf", "pdf"))

	if outcome.Status != StatusDeadLettered {
		t.Fatalf("status = %v, want StatusDeadLettered", outcome.Status)
	}
	if outcome.Reason != "HTTP Response Code 404" {
		t.Errorf("reason = %q, want %q", outcome.Reason, "HTTP Response Code 404")
	}
	if n := countLines(t, filepath.Join(outputDir, sink.DeadQueueFileName)); n != 1 {
		t.Errorf("dead_queue lines = %d, want exactly 1", n)
	}
	if n := countLines(t, filepath.Join(outputDir, sink.ManifestFileName)); n != 0 {
		t.Errorf("manifest lines = %d, want 0", n)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "DoDD 5000.01.pdf")); !os.IsNotExist(err) {
		t.Error("file exists for dead-lettered item")
	}
	// Item still reaches the crawl output stream.
	if n := countLines(t, filepath.Join(outputDir, "dod_issuances.json")); n != 1 {
		t.Errorf("crawl output lines = %d, want 1", n)
	}
}

func TestProcessItem_CacRestrictedNeverFetched(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
	}))
	defer srv.Close()

	p, outputDir := newTestPipeline(t, "")
	raw := rawItemWithURL("CNGBI 1000.01", srv.URL+"/d.pdf", "pdf")
	cac := true
	raw.CacLoginRequired = &cac

	outcome := p.ProcessItem(raw)
	if outcome.Status != StatusSkippedAccessRestricted {
		t.Fatalf("status = %v, want StatusSkippedAccessRestricted", outcome.Status)
	}
	if fetches.Load() != 0 {
		t.Error("fetch issued for access-restricted item")
	}
	if n := countLines(t, filepath.Join(outputDir, sink.ManifestFileName)); n != 0 {
		t.Errorf("manifest lines = %d, want 0", n)
	}
	if n := countLines(t, filepath.Join(outputDir, sink.DeadQueueFileName)); n != 0 {
		t.Errorf("dead_queue lines = %d, want 0", n)
	}
	if n := countLines(t, filepath.Join(outputDir, "dod_issuances.json")); n != 1 {
		t.Errorf("crawl output lines = %d, want 1", n)
	}
}

func TestProcessItem_UnsupportedFormatSkipped(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
	}))
	defer srv.Close()

	p, _ := newTestPipeline(t, "")
	outcome := p.ProcessItem(rawItemWithURL("AR 25-50", srv.URL+"/d.docx", "docx"))

	if outcome.Status != StatusSkippedNoSupportedFormat {
		t.Fatalf("status = %v, want StatusSkippedNoSupportedFormat", outcome.Status)
	}
	if fetches.Load() != 0 {
		t.Error("fetch issued for unsupported format")
	}
}

func TestProcessItem_PreviouslySeenSkipsFetch(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	// First run: download succeeds and writes a manifest line.
	p1, outputDir := newTestPipeline(t, "")
	first := p1.ProcessItem(rawItemWithURL("DoDD 5000.01", srv.URL+"/d.pdf", "pdf"))
	if first.Status != StatusDownloaded {
		t.Fatalf("first run status = %v", first.Status)
	}

	// Second run: previous manifest is the first run's manifest.
	runManifest, err := os.ReadFile(filepath.Join(outputDir, sink.ManifestFileName))
	if err != nil {
		t.Fatalf("failed to read run manifest: %v", err)
	}
	p2, _ := newTestPipeline(t, string(runManifest))

	before := fetches.Load()
	second := p2.ProcessItem(rawItemWithURL("DoDD 5000.01", srv.URL+"/d.pdf", "pdf"))
	if second.Status != StatusSkippedPreviouslySeen {
		t.Fatalf("second run status = %v, want StatusSkippedPreviouslySeen", second.Status)
	}
	if fetches.Load() != before {
		t.Error("fetch issued for previously seen hash")
	}
}

func TestProcessItem_DuplicateDocNameDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	p, _ := newTestPipeline(t, "")

	first := p.ProcessItem(rawItemWithURL("DoDD 5000.01", srv.URL+"/d.pdf", "pdf"))
	if first.Status != StatusDownloaded {
		t.Fatalf("first item status = %v", first.Status)
	}

	second := p.ProcessItem(rawItemWithURL("DoDD 5000.01", srv.URL+"/d.pdf", "pdf"))
	if second.Status != StatusDropped {
		t.Fatalf("second item status = %v, want StatusDropped", second.Status)
	}
}

func TestProcessItem_MissingDocNameDropped(t *testing.T) {
	p, _ := newTestPipeline(t, "")

	outcome := p.ProcessItem(models.RawItem{DocTitle: "No name"})
	if outcome.Status != StatusDropped {
		t.Fatalf("status = %v, want StatusDropped", outcome.Status)
	}
}

func TestNew_MissingPreviousManifestFatal(t *testing.T) {
	dir := t.TempDir()
	config := &models.CrawlerConfig{
		Name:             "dod_issuances",
		OutputDir:        filepath.Join(dir, "out"),
		PreviousManifest: filepath.Join(dir, "does-not-exist.json"),
	}

	logger := discardLogger()
	out, err := sink.New(logger, config.OutputDir, config.Name)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	_, err = New(logger, config, downloader.New(logger, time.Second), out)
	if err == nil {
		t.Fatal("New() did not fail for missing previous manifest with filtering enabled")
	}
}

func TestNew_MissingManifestToleratedWhenFilteringDisabled(t *testing.T) {
	dir := t.TempDir()
	config := &models.CrawlerConfig{
		Name:                     "dod_issuances",
		OutputDir:                filepath.Join(dir, "out"),
		PreviousManifest:         filepath.Join(dir, "does-not-exist.json"),
		DontFilterPreviousHashes: true,
	}

	logger := discardLogger()
	out, err := sink.New(logger, config.OutputDir, config.Name)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	p, err := New(logger, config, downloader.New(logger, time.Second), out)
	if err != nil {
		t.Fatalf("New() error = %v, want tolerated missing manifest", err)
	}
	if p == nil {
		t.Fatal("New() returned nil pipeline")
	}
}
