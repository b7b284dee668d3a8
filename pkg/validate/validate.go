// Package validate checks enriched document items against the output
// contract before they are persisted.
package validate

import (
	"fmt"
	"strings"

	"github.com/govdocs/harvester/models"
)

// Item verifies that every field the output contract requires is populated.
// Enrichment fills all of these, so a failure here means a crawler emitted a
// record the pipeline could not repair.
func Item(item models.DocumentItem) error {
	var missing []string

	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	check("doc_name", item.DocName)
	check("doc_title", item.DocTitle)
	check("doc_type", item.DocType)
	check("publication_date", item.PublicationDate)
	check("source_page_url", item.SourcePageURL)
	check("source_fqdn", item.SourceFQDN)
	check("crawler_used", item.CrawlerUsed)
	check("version_hash", item.VersionHash)
	check("access_timestamp", item.AccessTimestamp)

	if len(missing) > 0 {
		return fmt.Errorf("item %q failed validation: missing %s", item.DocName, strings.Join(missing, ", "))
	}
	return nil
}
