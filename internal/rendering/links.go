package rendering

import (
	"net/url"
	"strings"
)

// SafeLink returns href if it may be used as a link target and "" otherwise.
// Only mailto: links with an address and https: links with a host pass.
func SafeLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "mailto":
		if u.Opaque == "" {
			return ""
		}
		return href
	case "https":
		if u.Host == "" {
			return ""
		}
		return href
	default:
		return ""
	}
}

// isRelative reports whether href stays on the current site.
func isRelative(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
