package crawler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/alvmarrod/web-spider/internal/config"
	"github.com/alvmarrod/web-spider/internal/memory"
	"github.com/alvmarrod/web-spider/internal/robots"
	"github.com/sirupsen/logrus"
)

// Crawler walks domains one at a time: it pops a domain from the frontier,
// reads its robots policy, then walks every discovered path the policy
// permits, registering the other domains those pages link to.
type Crawler struct {
	cfg      *config.Config
	graph    *memory.Graph
	frontier *Frontier
	fetcher  *RetryFetcher
	extract  LinkExtractor
	limiter  *SubdomainLimiter
	excluded []*regexp.Regexp
	headers  http.Header
	onEvent  EventFunc
	log      logrus.FieldLogger
	crawled  int
	mu       sync.Mutex
}

// Option customizes a Crawler
type Option func(*Crawler)

// WithExtractor replaces the goquery link extractor
func WithExtractor(extract LinkExtractor) Option {
	return func(c *Crawler) {
		c.extract = extract
	}
}

// WithLogger sets the logger handed to the domain graph
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Crawler) {
		c.log = log
	}
}

// NewCrawler creates a crawler. onEvent may be nil.
func NewCrawler(cfg *config.Config, fetcher Fetcher, onEvent EventFunc, opts ...Option) (*Crawler, error) {
	excluded, err := cfg.ExcludeRegexps()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	headers := http.Header{}
	headers.Set("User-Agent", cfg.UserAgent)
	headers.Set("Accept", "text/html")

	c := &Crawler{
		cfg:      cfg,
		frontier: NewFrontier(),
		fetcher:  NewRetryFetcher(fetcher, cfg.RetryAttempts, cfg.RequestTimeout()),
		extract:  ExtractLinks,
		limiter:  NewSubdomainLimiter(cfg.MaxHostsPerRoot),
		excluded: excluded,
		headers:  headers,
		onEvent:  onEvent,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.graph = memory.NewGraph(cfg.MaxPathNodes, c.log)

	return c, nil
}

// Graph returns the domain graph built so far
func (c *Crawler) Graph() *memory.Graph {
	return c.graph
}

// Frontier returns the queue of domains waiting to be crawled
func (c *Crawler) Frontier() *Frontier {
	return c.frontier
}

// Crawled returns how many domains have been walked
func (c *Crawler) Crawled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crawled
}

// Snapshot returns the renderable form of the domain graph
func (c *Crawler) Snapshot() memory.Snapshot {
	return c.graph.Snapshot()
}

// Seed queues rawURL's domain at the front of the frontier. A path in the
// URL is added to the domain's path trie.
func (c *Crawler) Seed(rawURL string) (*memory.Domain, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.graph.Domain(target.Host)
	if err != nil {
		d = memory.NewDomain(target.Scheme, target.Host, c.cfg.MaxPathNodes)
	}
	if target.Path != "" {
		d.Paths.AddPath(target.Path)
	}
	c.limiter.Add(d.Host)
	c.frontier.PushFront(d)
	c.emit(Event{Kind: EventSeeded, Host: d.Host, URL: rawURL})

	return d, nil
}

// Run crawls until the frontier is empty, MaxDomains domains have been
// walked, or ctx is done.
func (c *Crawler) Run(ctx context.Context) error {
	for c.Crawled() < c.cfg.MaxDomains {
		more, err := c.Step(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// Step pops exactly one domain from the back of the frontier and crawls
// it. Returns false when the frontier was empty. Failures of a single
// domain are reported as events; the only error is ctx's.
func (c *Crawler) Step(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.frontier.PopBack()
	if !ok {
		return false, nil
	}

	c.crawlDomain(ctx, d)
	return true, ctx.Err()
}

func (c *Crawler) crawlDomain(ctx context.Context, d *memory.Domain) {
	if existing, err := c.graph.Domain(d.Host); err == nil && existing.Crawled() {
		c.emit(Event{Kind: EventDomainSkipped, Host: d.Host})
		return
	}

	robotsURL := d.URL("/robots.txt")
	page, err := c.fetcher.Get(ctx, robotsURL, c.headers)
	if err != nil {
		// Left uncrawled so a later seed can retry it
		c.emit(Event{Kind: EventRobotsFailed, Host: d.Host, URL: robotsURL, Err: err})
		return
	}

	policy := ""
	if page.StatusCode == http.StatusOK {
		policy = string(page.Body)
	}

	target := c.adopt(d)
	if page.Authority != "" && page.Authority != target.Host {
		final, err := c.redirect(target, page)
		if err != nil {
			c.emit(Event{Kind: EventDomainSkipped, Host: d.Host, Target: page.Authority, Err: err})
			return
		}
		target = final
	}

	if target.Crawled() {
		c.emit(Event{Kind: EventDomainSkipped, Host: target.Host})
		return
	}
	target.MarkCrawled()

	rules := robots.Parse(policy, c.cfg.DefaultAllow())
	c.emit(Event{Kind: EventDomainStarted, Host: target.Host, StatusCode: page.StatusCode})

	c.walk(ctx, target, rules)

	c.crawled++
	c.emit(Event{Kind: EventDomainCrawled, Host: target.Host})
}

// adopt registers d in the graph. When another value for the same host is
// already registered, d's pending paths move onto it.
func (c *Crawler) adopt(d *memory.Domain) *memory.Domain {
	if c.graph.Insert(d) {
		return d
	}

	existing, err := c.graph.Domain(d.Host)
	if err != nil {
		return d
	}
	if existing != d {
		movePaths(d, existing)
	}
	return existing
}

// redirect registers the host origin's robots request landed on, links
// origin to it and hands origin's pending paths over.
func (c *Crawler) redirect(origin *memory.Domain, page *Page) (*memory.Domain, error) {
	scheme := page.Scheme
	if scheme == "" {
		scheme = origin.Protocol
	}

	if c.graph.AddDomain(scheme, page.Authority) {
		c.limiter.Add(page.Authority)
		c.emit(Event{Kind: EventDomainDiscovered, Host: origin.Host, Target: page.Authority})
	}
	final, err := c.graph.Domain(page.Authority)
	if err != nil {
		return nil, err
	}

	if added, err := c.graph.LinkDomain(origin.Host, final.Host); err != nil {
		return nil, err
	} else if added {
		c.emit(Event{Kind: EventEdgeRecorded, Host: origin.Host, Target: final.Host})
	}
	c.emit(Event{Kind: EventRedirected, Host: origin.Host, Target: final.Host})

	movePaths(origin, final)
	origin.MarkCrawled()

	return final, nil
}

// walk visits d's unvisited paths depth-first until none are left
func (c *Crawler) walk(ctx context.Context, d *memory.Domain, rules *robots.Trie) {
	stack := d.Paths.Drain()

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}

		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, href := range c.fetchLinks(ctx, d, path, rules) {
			c.follow(d, path, href)
		}

		stack = append(stack, d.Paths.Drain()...)
	}
}

// fetchLinks fetches path when the rules permit it and returns its links.
// Denied or failed pages have no links.
func (c *Crawler) fetchLinks(ctx context.Context, d *memory.Domain, path string, rules *robots.Trie) []string {
	pageURL := d.URL(path)
	if !rules.Evaluate(path) {
		c.emit(Event{Kind: EventPageDenied, Host: d.Host, URL: pageURL})
		return nil
	}

	start := time.Now()
	page, err := c.fetcher.Get(ctx, pageURL, c.headers)
	if err != nil {
		c.emit(Event{Kind: EventPageFailed, Host: d.Host, URL: pageURL, Err: err, Duration: time.Since(start)})
		return nil
	}
	c.emit(Event{Kind: EventPageFetched, Host: d.Host, URL: pageURL, StatusCode: page.StatusCode, Duration: time.Since(start)})

	return c.extract(page.Body)
}

// follow files one href found on path of d: internal links grow d's path
// trie, links to other hosts register and queue that host.
func (c *Crawler) follow(d *memory.Domain, path, href string) {
	target, err := ResolveHref(path, href, d.Protocol)
	if err != nil {
		c.emit(Event{Kind: EventLinkSkipped, Host: d.Host, URL: href, Err: err})
		return
	}

	if target.Host == "" || target.Host == d.Host {
		d.Paths.AddPath(target.Path)
		return
	}

	if IsExcluded(target.Host, c.excluded) {
		c.emit(Event{Kind: EventLinkSkipped, Host: d.Host, URL: href, Target: target.Host, Err: fmt.Errorf("%w: excluded host", ErrUnsupportedLink)})
		return
	}
	if !c.graph.HasDomain(target.Host) {
		if !c.limiter.CanAdd(target.Host) {
			root := ExtractRootDomain(target.Host)
			c.emit(Event{Kind: EventLinkSkipped, Host: d.Host, URL: href, Target: target.Host,
				Err: fmt.Errorf("%w: %s already has %d hosts", ErrUnsupportedLink, root, c.limiter.Count(root))})
			return
		}
		c.limiter.Add(target.Host)
		if c.graph.AddDomain(target.Scheme, target.Host) {
			c.emit(Event{Kind: EventDomainDiscovered, Host: d.Host, Target: target.Host})
		}
	}

	other, err := c.graph.Domain(target.Host)
	if err != nil {
		c.emit(Event{Kind: EventLinkSkipped, Host: d.Host, URL: href, Err: err})
		return
	}
	other.Paths.AddPath(target.Path)
	if !other.Crawled() {
		c.frontier.PushFront(other)
	}

	if added, err := c.graph.LinkDomain(d.Host, other.Host); err != nil {
		c.emit(Event{Kind: EventLinkSkipped, Host: d.Host, URL: href, Err: err})
	} else if added {
		c.emit(Event{Kind: EventEdgeRecorded, Host: d.Host, Target: other.Host})
	}
}

func (c *Crawler) emit(e Event) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}

// movePaths copies from's unvisited paths into to's trie
func movePaths(from, to *memory.Domain) {
	for path := range from.Paths.UnvisitedPaths() {
		to.Paths.AddPath(path)
	}
}
