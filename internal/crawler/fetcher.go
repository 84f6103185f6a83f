package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// Page is the outcome of one completed HTTP request
type Page struct {
	StatusCode int
	// Scheme and Authority describe where the request ended up after
	// following redirects
	Scheme    string
	Authority string
	Body      []byte
}

// Fetcher performs a single HTTP GET. A network failure is an error; any
// HTTP status, including 4xx and 5xx, is a Page.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers http.Header) (*Page, error)
}

// CollyFetcher fetches pages with a colly collector
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher creates a fetcher. clientTimeout bounds each HTTP request,
// including attempts the retry timer has already given up on.
func NewCollyFetcher(userAgent string, clientTimeout time.Duration) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	// Non-2xx responses are still pages (robots.txt 404 means "no rules")
	c.ParseHTTPErrorResponse = true
	if clientTimeout > 0 {
		c.SetRequestTimeout(clientTimeout)
	}

	return &CollyFetcher{collector: c}
}

// Fetch issues a GET and reports the final URL after redirects
func (f *CollyFetcher) Fetch(ctx context.Context, url string, headers http.Header) (*Page, error) {
	// A clone shares the HTTP backend but not callbacks, so concurrent
	// fetches do not see each other's responses
	c := f.collector.Clone()
	c.Context = ctx

	var page *Page
	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			StatusCode: r.StatusCode,
			Scheme:     r.Request.URL.Scheme,
			Authority:  r.Request.URL.Host,
			Body:       r.Body,
		}
	})

	if err := c.Request(http.MethodGet, url, nil, nil, headers.Clone()); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if page == nil {
		return nil, fmt.Errorf("fetch %s: no response", url)
	}

	return page, nil
}
