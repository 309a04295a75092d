package pipeline

import (
	"net/url"
	"strings"
)

// Navigation paths that never point at a pattern file.
var navigationDenylist = []string{"/comments", "/people", "/threads", "/report"}

// Suffixes that mark a link as a downloadable pattern file.
var fileSuffixes = []string{".pdf", ".zip"}

// FilterDownloads keeps a candidate link iff it ends in a file-like suffix or
// lives on a host other than the source site. Links matching the navigation
// denylist are rejected first. Order is preserved; duplicates are kept as
// stated by the source.
func FilterDownloads(links []string, sourceHost string) []string {
	out := []string{}
	for _, link := range links {
		trimmed := strings.TrimSpace(link)
		if trimmed == "" {
			continue
		}
		if isNavigationLink(trimmed) {
			continue
		}
		if hasFileSuffix(trimmed) || isExternalHost(trimmed, sourceHost) {
			out = append(out, trimmed)
		}
	}
	return out
}

func isNavigationLink(link string) bool {
	path := link
	if parsed, err := url.Parse(link); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	lower := strings.ToLower(path)
	for _, nav := range navigationDenylist {
		if strings.HasSuffix(lower, nav) || strings.Contains(lower, nav+"/") {
			return true
		}
	}
	return false
}

func hasFileSuffix(link string) bool {
	path := link
	if parsed, err := url.Parse(link); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	lower := strings.ToLower(path)
	for _, suffix := range fileSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func isExternalHost(link, sourceHost string) bool {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		// Relative links stay on the source site.
		return false
	}
	return !strings.EqualFold(parsed.Host, sourceHost)
}
