package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CrawlerConfig describes one crawler's run configuration. It is loaded from
// a YAML file and supplies the defaults the enricher falls back to.
type CrawlerConfig struct {
	Name                     string   `yaml:"name"`
	OutputDir                string   `yaml:"output_dir"`
	PreviousManifest         string   `yaml:"previous_manifest"`
	DontFilterPreviousHashes bool     `yaml:"dont_filter_previous_hashes"`
	CacLoginRequired         bool     `yaml:"cac_login_required"`
	DocType                  string   `yaml:"doc_type"`
	SourcePageURL            string   `yaml:"source_page_url"`
	StartURLs                []string `yaml:"start_urls"`
	Workers                  int      `yaml:"workers"`
	DownloadTimeoutSeconds   int      `yaml:"download_timeout_seconds"`
}

// LoadCrawlerConfig reads and validates a crawler config YAML file.
func LoadCrawlerConfig(path string) (*CrawlerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config CrawlerConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Name == "" {
		return nil, fmt.Errorf("config is missing crawler name")
	}
	if config.OutputDir == "" {
		return nil, fmt.Errorf("config is missing output_dir")
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.DownloadTimeoutSeconds <= 0 {
		config.DownloadTimeoutSeconds = 30
	}

	return &config, nil
}

// SourceURL returns the configured source page URL, falling back to the
// first start URL when none was set.
func (c *CrawlerConfig) SourceURL() string {
	if c.SourcePageURL != "" {
		return c.SourcePageURL
	}
	if len(c.StartURLs) > 0 {
		return c.StartURLs[0]
	}
	return ""
}
