package pipeline

import (
	"fmt"
	"time"

	"github.com/govdocs/harvester/internal/common"
	"github.com/govdocs/harvester/models"
)

// Enricher fills missing or derived metadata fields on a raw crawler item.
// It performs no network or disk I/O.
type Enricher struct {
	config *models.CrawlerConfig
	now    func() time.Time
}

// NewEnricher builds an Enricher using the crawler's configured defaults.
func NewEnricher(config *models.CrawlerConfig) *Enricher {
	return &Enricher{config: config, now: time.Now}
}

// Enrich resolves a raw item into a complete DocumentItem. Fields the
// crawler already set are kept as-is; version_hash in particular is never
// recomputed once present. doc_name is injected into the hash input before
// hashing so two documents with identical metadata but different names never
// collide.
func (e *Enricher) Enrich(raw models.RawItem) (models.DocumentItem, error) {
	item := models.DocumentItem{
		DocName:            raw.DocName,
		DocTitle:           raw.DocTitle,
		DocNum:             raw.DocNum,
		DocType:            raw.DocType,
		PublicationDate:    raw.PublicationDate,
		DownloadableItems:  raw.DownloadableItems,
		SourcePageURL:      raw.SourcePageURL,
		SourceFQDN:         raw.SourceFQDN,
		CrawlerUsed:        raw.CrawlerUsed,
		VersionHashRawData: raw.VersionHashRawData,
		VersionHash:        raw.VersionHash,
		AccessTimestamp:    raw.AccessTimestamp,
	}

	if item.CrawlerUsed == "" {
		item.CrawlerUsed = e.config.Name
	}
	if item.SourcePageURL == "" {
		item.SourcePageURL = e.config.SourceURL()
	}
	if item.SourceFQDN == "" {
		item.SourceFQDN = common.FQDNFromURL(item.SourcePageURL)
	}

	if item.VersionHash == "" {
		if item.VersionHashRawData == nil {
			item.VersionHashRawData = make(map[string]string)
		}
		item.VersionHashRawData["doc_name"] = item.DocName

		hash, err := common.CanonicalHash(item.VersionHashRawData)
		if err != nil {
			return models.DocumentItem{}, fmt.Errorf("failed to compute version hash for %q: %w", item.DocName, err)
		}
		item.VersionHash = hash
	}

	if item.AccessTimestamp == "" {
		item.AccessTimestamp = common.Timestamp(e.now())
	}
	if item.PublicationDate == "" {
		item.PublicationDate = "N/A"
	}
	if raw.CacLoginRequired != nil {
		item.CacLoginRequired = *raw.CacLoginRequired
	} else {
		item.CacLoginRequired = e.config.CacLoginRequired
	}
	if item.DocType == "" {
		item.DocType = e.config.DocType
	}

	return item, nil
}
