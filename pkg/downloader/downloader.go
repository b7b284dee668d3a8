// Package downloader decides whether a document's file should be fetched and
// performs the fetch, classifying the outcome.
package downloader

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/govdocs/harvester/internal/common"
	"github.com/govdocs/harvester/models"
	"github.com/govdocs/harvester/pkg/manifest"
)

// SupportedExtensions lists the file types the downstream parsers can handle.
var SupportedExtensions = []string{"pdf", "html", "zip"}

// Failure reason strings recorded in dead-letter records.
const (
	ReasonEmptyBody     = "Response has empty body"
	ReasonRequestFailed = "Pipeline Media Request Failed"
)

// ReasonForStatus is the dead-letter reason for a non-2xx response.
func ReasonForStatus(code int) string {
	return fmt.Sprintf("HTTP Response Code %d", code)
}

// Decision is the scheduler's verdict for one item.
type Decision int

const (
	// Fetch means the first supported downloadable entry should be fetched.
	Fetch Decision = iota
	// SkipPreviouslySeen means the item's version hash was downloaded on an
	// earlier run.
	SkipPreviouslySeen
	// SkipAccessRestricted means the file sits behind a CAC login and must
	// never be fetched.
	SkipAccessRestricted
	// SkipNoSupportedFormat means no downloadable entry has a supported
	// extension.
	SkipNoSupportedFormat
)

func (d Decision) String() string {
	switch d {
	case Fetch:
		return "fetch"
	case SkipPreviouslySeen:
		return "skip_previously_seen"
	case SkipAccessRestricted:
		return "skip_access_restricted"
	case SkipNoSupportedFormat:
		return "skip_no_supported_format"
	default:
		return "unknown"
	}
}

// FirstSupported returns the first downloadable entry with a supported
// extension, in the order the source item listed them. Only one entry is
// ever acted on per document; first-listed wins as the deliberate tie-break.
func FirstSupported(items []models.DownloadableItem) (models.DownloadableItem, bool) {
	for _, entry := range items {
		for _, ext := range SupportedExtensions {
			if entry.DocType == ext {
				return entry, true
			}
		}
	}
	return models.DownloadableItem{}, false
}

// Decide classifies an enriched item against the previous-run hash set.
// When the decision is Fetch, the chosen downloadable entry is returned.
func Decide(item models.DocumentItem, previous *manifest.HashSet) (Decision, models.DownloadableItem) {
	if previous != nil && previous.Contains(item.VersionHash) {
		return SkipPreviouslySeen, models.DownloadableItem{}
	}
	if item.CacLoginRequired {
		return SkipAccessRestricted, models.DownloadableItem{}
	}
	entry, ok := FirstSupported(item.DownloadableItems)
	if !ok {
		return SkipNoSupportedFormat, models.DownloadableItem{}
	}
	return Fetch, entry
}

// FetchResult is the classified outcome of one fetch.
type FetchResult struct {
	OK            bool
	StatusCode    int
	Body          []byte
	FailureReason string
}

// Downloader issues file fetches. Redirects are followed transparently as
// part of a single logical fetch; the final status classifies the outcome.
type Downloader struct {
	client *resty.Client
	logger *slog.Logger
}

// New builds a Downloader with a per-request timeout.
func New(logger *slog.Logger, timeout time.Duration) *Downloader {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	return &Downloader{client: client, logger: logger}
}

// Fetch downloads rawURL and classifies the response: an empty body is a
// failure regardless of status, a 2xx with a body is a success, any other
// status is a failure carrying the status code, and transport-level errors
// (including unusable URLs) are reported as a failed media request.
func (d *Downloader) Fetch(rawURL string) FetchResult {
	url := common.SanitizeURL(rawURL)
	if !common.ValidWebURL(url) {
		d.logger.Warn("Refusing to fetch invalid URL", "url", rawURL)
		return FetchResult{FailureReason: ReasonRequestFailed}
	}

	resp, err := d.client.R().Get(url)
	if err != nil {
		d.logger.Warn("Media request failed", "url", url, "error", err)
		return FetchResult{FailureReason: ReasonRequestFailed}
	}

	status := resp.StatusCode()
	body := resp.Body()

	if len(body) == 0 {
		return FetchResult{StatusCode: status, FailureReason: ReasonEmptyBody}
	}
	if status >= 200 && status < 300 {
		return FetchResult{OK: true, StatusCode: status, Body: body}
	}
	return FetchResult{StatusCode: status, FailureReason: ReasonForStatus(status)}
}
