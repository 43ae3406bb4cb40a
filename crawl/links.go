// Package crawl provides link discovery for bulk downloads.
// It resolves and filters outbound links and keeps a visited set, keeping
// crawling logic separate from the fetch pipeline.
package crawl

import (
	"net/url"
	"strings"
)

// Outbound filters links down to fetchable pages: static assets are
// skipped, URLs are normalized, duplicates within links are dropped and,
// when domain is non-empty, only links on that host are kept.
func Outbound(links []string, domain string) []string {
	seen := make(map[string]bool, len(links))
	var out []string
	for _, link := range links {
		if IsStaticAsset(link) {
			continue
		}
		if domain != "" && !IsSameDomain(link, domain) {
			continue
		}
		n := NormalizeURL(link)
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// ResolveURL resolves a potentially relative URL against a base.
// It returns "" for non-navigable references.
func ResolveURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	// Skip mailto, javascript, etc.
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "data:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	// Strip fragments.
	resolved.Fragment = ""
	return resolved.String()
}
