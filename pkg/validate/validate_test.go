package validate

import (
	"strings"
	"testing"

	"github.com/govdocs/harvester/models"
)

func validItem() models.DocumentItem {
	return models.DocumentItem{
		DocName:         "DoDD 5000.01",
		DocTitle:        "The Defense Acquisition System",
		DocType:         "Directive",
		PublicationDate: "N/A",
		SourcePageURL:   "https://www.esd.whs.mil/Directives/",
		SourceFQDN:      "www.esd.whs.mil",
		CrawlerUsed:     "dod_issuances",
		VersionHash:     "cafef00d",
		AccessTimestamp: "2024-03-01 10:00:00.000000",
	}
}

func TestItem_Valid(t *testing.T) {
	if err := Item(validItem()); err != nil {
		t.Errorf("Item() error = %v, want nil", err)
	}
}

func TestItem_MissingFields(t *testing.T) {
	item := validItem()
	item.DocTitle = ""
	item.VersionHash = ""

	err := Item(item)
	if err == nil {
		t.Fatal("Item() error = nil, want validation failure")
	}
	if !strings.Contains(err.Error(), "doc_title") || !strings.Contains(err.Error(), "version_hash") {
		t.Errorf("error does not name missing fields: %v", err)
	}
}
