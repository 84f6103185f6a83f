package storage

import "time"

// Node represents an exported domain of the crawl graph
type Node struct {
	NodeID     int
	DomainName string
	Protocol   string
	PathCount  int
	Crawled    bool
	CreatedAt  time.Time
}

// Edge represents a directed link between two domains
type Edge struct {
	EdgeID     int
	FromNodeID int
	ToNodeID   int
	Weight     int
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	DomainsDiscovered int       `json:"domains_discovered"`
	DomainsCrawled    int       `json:"domains_crawled"`
	DomainsSkipped    int       `json:"domains_skipped"`
	RobotsFailed      int       `json:"robots_failed"`
	EdgesRecorded     int       `json:"edges_recorded"`
	PagesFetched      int       `json:"pages_fetched"`
	PagesFailed       int       `json:"pages_failed"`
	PagesDenied       int       `json:"pages_denied"`
	LinksSkipped      int       `json:"links_skipped"`
	TotalFetchTimeMs  int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs    int64     `json:"avg_fetch_time_ms"`
	TerminationReason string    `json:"termination_reason"`
}
