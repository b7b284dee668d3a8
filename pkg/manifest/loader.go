package manifest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// progressInterval controls how often the loader logs progress on very large
// manifests.
const progressInterval = 1000

// maxLineBytes bounds a single manifest line. Item snapshots never come close
// to this.
const maxLineBytes = 1024 * 1024

// LoadPreviousHashes reads a cumulative manifest file line by line and builds
// the hash set for crawlerName. A record is admitted when its crawler_used
// field is empty (legacy records with ambiguous ownership belong to every
// crawler) or matches crawlerName. Blank lines are skipped; a malformed line
// is an error, since silently dropping history would trigger mass
// re-downloads.
func LoadPreviousHashes(logger *slog.Logger, path string, crawlerName string) (*HashSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open previous manifest: %w", err)
	}
	defer f.Close()

	set := NewHashSet()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lines := 0
	for scanner.Scan() {
		lines++
		if lines%progressInterval == 0 {
			logger.Info("Reading previous manifest", "lines", lines, "hashes", set.Len())
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("malformed manifest line %d: %w", lines, err)
		}

		if rec.CrawlerUsed == "" || rec.CrawlerUsed == crawlerName {
			set.add(rec.VersionHash)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read previous manifest: %w", err)
	}

	logger.Info("Previous manifest loaded", "lines", lines, "hashes", set.Len())
	return set, nil
}
