package common

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the access-timestamp format. Microsecond precision and
// lexicographically sortable.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Timestamp formats t using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// CanonicalHash computes the SHA256 hex digest of a field mapping. The map is
// serialized as JSON, which encodes keys in sorted order, so the digest is
// stable regardless of insertion order, process, or platform.
func CanonicalHash(fields map[string]string) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to serialize hash fields: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// FQDNFromURL returns the host portion of a web URL, without port.
func FQDNFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste
// issues from scraped pages: whitespace, trailing punctuation, markdown
// artifacts.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// Extract URL from markdown link format: [text](url) -> url
	markdownLinkPattern := regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// ValidWebURL reports whether a sanitized URL is a fetchable http(s) URL.
func ValidWebURL(rawURL string) bool {
	if rawURL == "" || strings.Contains(rawURL, " ") {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	// Suspicious characters in the host indicate a malformed scrape.
	if strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return false
	}
	return true
}
