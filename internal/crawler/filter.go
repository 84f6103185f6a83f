package crawler

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var (
	// ErrInvalidURL is returned for seeds that are not absolute http(s) URLs
	ErrInvalidURL = errors.New("invalid URL")
	// ErrUnsupportedLink is returned for hrefs that cannot become a crawl path
	ErrUnsupportedLink = errors.New("unsupported link")
)

// Target is a URL broken into the parts the crawler works with
type Target struct {
	Scheme string
	Host   string
	Path   string
	Query  string
}

// ParseTarget decomposes an absolute http(s) URL
func ParseTarget(rawURL string) (Target, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Target{}, fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("%w: %q: missing host", ErrInvalidURL, rawURL)
	}

	return Target{
		Scheme: scheme,
		Host:   u.Host,
		Path:   u.Path,
		Query:  u.RawQuery,
	}, nil
}

// ResolveHref turns an extracted href into a target. Relative paths are
// joined to currentPath, absolute ones are normalized as they are.
// Back-slashes count as forward slashes. Host is empty for links without
// a hostname; Scheme falls back to scheme when the href has none.
func ResolveHref(currentPath, href, scheme string) (Target, error) {
	href = strings.ReplaceAll(strings.TrimSpace(href), `\`, "/")
	if href == "" {
		return Target{}, fmt.Errorf("%w: empty href", ErrUnsupportedLink)
	}

	u, err := url.Parse(href)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedLink, href, err)
	}

	if u.Scheme != "" {
		scheme = strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return Target{}, fmt.Errorf("%w: %q: scheme %s", ErrUnsupportedLink, href, scheme)
		}
	}
	if u.Opaque != "" {
		return Target{}, fmt.Errorf("%w: %q: opaque URL", ErrUnsupportedLink, href)
	}

	p := u.Path
	if p == "" {
		if u.Host == "" {
			return Target{}, fmt.Errorf("%w: %q: no path", ErrUnsupportedLink, href)
		}
		p = "/"
	}

	if strings.HasPrefix(p, "/") {
		p = cleanPath(p)
	} else {
		p = cleanPath(path.Join(currentPath, p) + trailingSlash(p))
	}

	return Target{
		Scheme: scheme,
		Host:   u.Host,
		Path:   p,
		Query:  u.RawQuery,
	}, nil
}

// cleanPath normalizes p and keeps its trailing slash
func cleanPath(p string) string {
	cleaned := path.Clean(p)
	if cleaned != "/" && strings.HasSuffix(p, "/") {
		cleaned += "/"
	}
	return cleaned
}

func trailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return "/"
	}
	return ""
}

// ExtractRootDomain returns the registrable domain of a host
// Example: blog.example.co.uk -> example.co.uk
func ExtractRootDomain(host string) string {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	hostname = strings.ToLower(hostname)

	if net.ParseIP(hostname) != nil {
		return hostname
	}
	if root, err := publicsuffix.EffectiveTLDPlusOne(hostname); err == nil {
		return root
	}

	parts := strings.Split(hostname, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "." + parts[len(parts)-1]
	}
	return hostname
}

// IsExcluded checks if a host matches any excluded pattern
func IsExcluded(host string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(host) {
			return true
		}
	}
	return false
}
