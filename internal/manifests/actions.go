// Package manifests implements the manifest inspection command.
package manifests

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/govdocs/harvester/pkg/manifest"
)

// StatsAction reads a cumulative manifest and reports how many records each
// crawler owns. Useful before a run to sanity-check what will be filtered.
func StatsAction(c *cli.Context) error {
	path := c.String("path")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	perCrawler := make(map[string]int)
	total := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec manifest.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return fmt.Errorf("malformed manifest line %d: %w", lineNo, err)
		}

		crawler := rec.CrawlerUsed
		if crawler == "" {
			crawler = "(legacy, no crawler)"
		}
		perCrawler[crawler]++
		total++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	crawlers := make([]string, 0, len(perCrawler))
	for name := range perCrawler {
		crawlers = append(crawlers, name)
	}
	sort.Strings(crawlers)

	fmt.Printf("%-40s %-8s\n", "Crawler", "Records")
	fmt.Println(strings.Repeat("-", 50))
	for _, name := range crawlers {
		fmt.Printf("%-40s %-8d\n", name, perCrawler[name])
	}
	fmt.Printf("\nTotal: %d records in %s\n", total, path)

	return nil
}
