package pipeline

import (
	"errors"
	"sync"
)

// Drop reasons surfaced by the duplicate filter.
var (
	ErrMissingDocName   = errors.New("no doc_name")
	ErrDuplicateDocName = errors.New("duplicate doc_name found")
)

// DedupFilter rejects repeated doc_names within a single run. First seen
// wins. The filter is owned by the pipeline instance, not shared globally,
// so concurrent runs (and tests) never leak state into each other.
type DedupFilter struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedupFilter returns an empty filter.
func NewDedupFilter() *DedupFilter {
	return &DedupFilter{seen: make(map[string]struct{})}
}

// Admit records docName and returns nil, or returns the drop reason. Safe
// for concurrent use by multiple workers.
func (f *DedupFilter) Admit(docName string) error {
	if docName == "" {
		return ErrMissingDocName
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[docName]; ok {
		return ErrDuplicateDocName
	}
	f.seen[docName] = struct{}{}
	return nil
}
