package memory

// Domain is a host seen during the crawl together with the paths
// discovered on it
type Domain struct {
	Protocol string
	Host     string
	Paths    *PathTrie
	crawled  bool
}

// NewDomain creates a domain with an empty path trie
func NewDomain(protocol, host string, maxPathNodes int) *Domain {
	return &Domain{
		Protocol: protocol,
		Host:     host,
		Paths:    NewPathTrie(maxPathNodes),
	}
}

// URL builds the absolute URL of path on this domain
func (d *Domain) URL(path string) string {
	return d.Protocol + "://" + d.Host + path
}

// Crawled reports whether the domain's robots policy has been read and
// its paths walked (or are being walked)
func (d *Domain) Crawled() bool {
	return d.crawled
}

// MarkCrawled flags the domain so it is not crawled again
func (d *Domain) MarkCrawled() {
	d.crawled = true
}
