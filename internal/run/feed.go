package run

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/govdocs/harvester/models"
)

// feedMaxLineBytes bounds one feed line; raw items are small.
const feedMaxLineBytes = 4 * 1024 * 1024

// ReadFeed reads a newline-delimited JSON feed of raw crawler items. Path
// "-" reads from stdin. Blank lines are skipped; a malformed line is an
// error so a truncated feed fails loudly instead of silently shrinking the
// crawl.
func ReadFeed(path string) ([]models.RawItem, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open item feed: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var items []models.RawItem
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), feedMaxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item models.RawItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("malformed feed line %d: %w", lineNo, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read item feed: %w", err)
	}

	return items, nil
}
