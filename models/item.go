// Package models defines the record types flowing through the harvest pipeline.
package models

// DownloadableItem is one file attached to a document. DocType doubles as the
// file extension ("pdf", "html", "zip", ...).
type DownloadableItem struct {
	DocType         string `json:"doc_type"`
	WebURL          string `json:"web_url"`
	CompressionType string `json:"compression_type,omitempty"`
}

// RawItem is a document record exactly as an upstream crawler emitted it.
// Fields the crawler did not set stay at their zero value; CacLoginRequired
// is a pointer because "not set" and "false" must stay distinguishable until
// enrichment applies the crawler default.
type RawItem struct {
	DocName            string             `json:"doc_name"`
	DocTitle           string             `json:"doc_title"`
	DocNum             string             `json:"doc_num"`
	DocType            string             `json:"doc_type"`
	PublicationDate    string             `json:"publication_date"`
	CacLoginRequired   *bool              `json:"cac_login_required"`
	DownloadableItems  []DownloadableItem `json:"downloadable_items"`
	SourcePageURL      string             `json:"source_page_url"`
	SourceFQDN         string             `json:"source_fqdn"`
	CrawlerUsed        string             `json:"crawler_used"`
	VersionHashRawData map[string]string  `json:"version_hash_raw_data"`
	VersionHash        string             `json:"version_hash"`
	AccessTimestamp    string             `json:"access_timestamp"`
}

// DocumentItem is a fully enriched document record. Every field is resolved;
// VersionHash is a deterministic fingerprint of VersionHashRawData and is
// never recomputed once set.
type DocumentItem struct {
	DocName            string             `json:"doc_name"`
	DocTitle           string             `json:"doc_title"`
	DocNum             string             `json:"doc_num"`
	DocType            string             `json:"doc_type"`
	PublicationDate    string             `json:"publication_date"`
	CacLoginRequired   bool               `json:"cac_login_required"`
	DownloadableItems  []DownloadableItem `json:"downloadable_items"`
	SourcePageURL      string             `json:"source_page_url"`
	SourceFQDN         string             `json:"source_fqdn"`
	CrawlerUsed        string             `json:"crawler_used"`
	VersionHashRawData map[string]string  `json:"version_hash_raw_data"`
	VersionHash        string             `json:"version_hash"`
	AccessTimestamp    string             `json:"access_timestamp"`
}
