// Package manifest handles the cumulative download manifest: loading the
// previous run's hashes and appending records for the current run.
package manifest

import (
	"github.com/govdocs/harvester/models"
)

// Record is one manifest line. The cumulative manifest across runs is the
// input to the next run's hash filter.
type Record struct {
	VersionHash     string `json:"version_hash"`
	DocName         string `json:"doc_name"`
	CrawlerUsed     string `json:"crawler_used"`
	AccessTimestamp string `json:"access_timestamp"`
}

// RecordFor builds the manifest record for a downloaded item.
func RecordFor(item models.DocumentItem) Record {
	return Record{
		VersionHash:     item.VersionHash,
		DocName:         item.DocName,
		CrawlerUsed:     item.CrawlerUsed,
		AccessTimestamp: item.AccessTimestamp,
	}
}

// DeadLetter is one dead-letter line: the full item snapshot plus the reason
// its download failed.
type DeadLetter struct {
	Document      models.DocumentItem `json:"document"`
	FailureReason string              `json:"failure_reason"`
}

// HashSet is the set of version hashes admitted from the previous manifest.
// It is built once at pipeline startup and read-only afterwards, so it is
// safe for concurrent reads.
type HashSet struct {
	hashes map[string]struct{}
}

// NewHashSet returns an empty hash set.
func NewHashSet() *HashSet {
	return &HashSet{hashes: make(map[string]struct{})}
}

func (s *HashSet) add(hash string) {
	if hash != "" {
		s.hashes[hash] = struct{}{}
	}
}

// Contains reports whether hash was seen in the previous manifest.
func (s *HashSet) Contains(hash string) bool {
	_, ok := s.hashes[hash]
	return ok
}

// Len returns the number of admitted hashes.
func (s *HashSet) Len() int {
	return len(s.hashes)
}
