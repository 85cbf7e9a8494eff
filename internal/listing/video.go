package listing

import (
	"net/url"
	"strings"
)

var videoPlatforms = []struct {
	name  string
	hosts []string
}{
	{"youtube", []string{"youtube.com", "youtu.be"}},
	{"tiktok", []string{"tiktok.com"}},
	{"facebook", []string{"facebook.com", "fb.watch"}},
	{"instagram", []string{"instagram.com"}},
	{"vimeo", []string{"vimeo.com"}},
	{"twitter", []string{"twitter.com", "x.com"}},
	{"linkedin", []string{"linkedin.com"}},
}

// DetectVideoPlatform guesses the hosting platform from a video URL's host.
func DetectVideoPlatform(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "other"
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range videoPlatforms {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p.name
			}
		}
	}
	return "other"
}

func knownVideoPlatform(s string) bool {
	if s == "other" {
		return true
	}
	for _, p := range videoPlatforms {
		if p.name == s {
			return true
		}
	}
	return false
}

// isHTTPURL reports whether s parses as an absolute http or https URL.
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
