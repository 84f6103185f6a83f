// Package storage exports a finished crawl graph to SQLite. The export is
// write-only: nothing is read back to resume a crawl.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS domains (
	domain_id INTEGER PRIMARY KEY AUTOINCREMENT,
	host TEXT UNIQUE NOT NULL,
	protocol TEXT NOT NULL DEFAULT '',
	path_count INTEGER NOT NULL DEFAULT 0,
	crawled BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS links (
	link_id INTEGER PRIMARY KEY AUTOINCREMENT,
	from_domain_id INTEGER NOT NULL REFERENCES domains(domain_id),
	to_domain_id INTEGER NOT NULL REFERENCES domains(domain_id),
	weight INTEGER NOT NULL DEFAULT 1,
	UNIQUE(from_domain_id, to_domain_id)
);

CREATE TABLE IF NOT EXISTS crawl_runs (
	run_id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	domains_crawled INTEGER NOT NULL,
	edges_recorded INTEGER NOT NULL,
	pages_fetched INTEGER NOT NULL,
	pages_failed INTEGER NOT NULL,
	termination_reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_domain_id);
CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_domain_id);
`

// Storage writes graph exports to one SQLite file
type Storage struct {
	db *sql.DB
}

// NewStorage opens or creates the export database at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// UpsertNode writes a domain and returns its id. An existing row keeps its
// id; its crawled flag never goes back to false.
func (s *Storage) UpsertNode(node Node) (int, error) {
	var id int
	err := s.db.QueryRow(`
		INSERT INTO domains (host, protocol, path_count, crawled)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(host) DO UPDATE SET
			protocol = excluded.protocol,
			path_count = excluded.path_count,
			crawled = MAX(domains.crawled, excluded.crawled)
		RETURNING domain_id
	`, node.DomainName, node.Protocol, node.PathCount, node.Crawled).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert domain %s: %w", node.DomainName, err)
	}

	return id, nil
}

// Nodes returns every exported domain in export order
func (s *Storage) Nodes() ([]Node, error) {
	rows, err := s.db.Query(`
		SELECT domain_id, host, protocol, path_count, crawled, created_at
		FROM domains
		ORDER BY domain_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load domains: %w", err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var node Node
		if err := rows.Scan(&node.NodeID, &node.DomainName, &node.Protocol, &node.PathCount, &node.Crawled, &node.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		nodes = append(nodes, node)
	}

	return nodes, rows.Err()
}

// UpsertEdge records a link between two exported domains. Exporting the
// same link again increments its weight.
func (s *Storage) UpsertEdge(fromID, toID int) error {
	_, err := s.db.Exec(`
		INSERT INTO links (from_domain_id, to_domain_id)
		VALUES (?, ?)
		ON CONFLICT(from_domain_id, to_domain_id) DO UPDATE SET
			weight = links.weight + 1
	`, fromID, toID)
	if err != nil {
		return fmt.Errorf("failed to upsert link %d -> %d: %w", fromID, toID, err)
	}

	return nil
}

// Edges returns every exported link in insertion order
func (s *Storage) Edges() ([]Edge, error) {
	rows, err := s.db.Query(`
		SELECT link_id, from_domain_id, to_domain_id, weight
		FROM links
		ORDER BY link_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var edge Edge
		if err := rows.Scan(&edge.EdgeID, &edge.FromNodeID, &edge.ToNodeID, &edge.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}

// SaveRun appends the summary of a finished crawl
func (s *Storage) SaveRun(m Metrics) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO crawl_runs (started_at, finished_at, domains_crawled, edges_recorded,
			pages_fetched, pages_failed, termination_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.StartTime, m.EndTime, m.DomainsCrawled, m.EdgesRecorded, m.PagesFetched, m.PagesFailed, m.TerminationReason)
	if err != nil {
		return 0, fmt.Errorf("failed to save crawl run: %w", err)
	}

	return res.LastInsertId()
}

// RunCount returns how many crawl runs have been saved
func (s *Storage) RunCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM crawl_runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count crawl runs: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
