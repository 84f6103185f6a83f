package memory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alvmarrod/web-spider/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrDomainNotFound is returned when a host has not been registered
var ErrDomainNotFound = errors.New("domain not registered")

// Graph holds the discovered domains and the directed links between them
type Graph struct {
	domains      map[string]*Domain  // host -> domain
	ids          map[string]int      // host -> registration order
	order        []string            // hosts in registration order
	links        map[string][]string // origin -> destinations, in link order
	linked       map[string]map[string]bool
	edgeCount    int
	maxPathNodes int
	log          logrus.FieldLogger
	mu           sync.RWMutex
}

// NodeView is a domain as exported for rendering
type NodeView struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// EdgeView is a directed link as exported for rendering
type EdgeView struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Snapshot is the renderable node/edge form of the graph
type Snapshot struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// NewGraph creates an empty graph. Domains created by AddDomain get a path
// trie bounded by maxPathNodes.
func NewGraph(maxPathNodes int, log logrus.FieldLogger) *Graph {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Graph{
		domains:      make(map[string]*Domain),
		ids:          make(map[string]int),
		links:        make(map[string][]string),
		linked:       make(map[string]map[string]bool),
		maxPathNodes: maxPathNodes,
		log:          log,
	}
}

// AddDomain registers host if it is unseen.
// Returns false when it was already registered.
func (g *Graph) AddDomain(protocol, host string) bool {
	return g.Insert(NewDomain(protocol, host, g.maxPathNodes))
}

// Insert registers an existing domain value, keeping its path trie.
// Returns false when its host was already registered.
func (g *Graph) Insert(d *Domain) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.domains[d.Host]; exists {
		g.log.WithField("host", d.Host).Debug("Domain already registered")
		return false
	}

	g.ids[d.Host] = len(g.order)
	g.order = append(g.order, d.Host)
	g.domains[d.Host] = d
	return true
}

// HasDomain reports whether host is registered
func (g *Graph) HasDomain(host string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.domains[host]
	return exists
}

// Domain returns the registered domain for host
func (g *Graph) Domain(host string) (*Domain, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	d, exists := g.domains[host]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotFound, host)
	}
	return d, nil
}

// LinkDomain records a directed link from origin to destination. Both hosts
// must be registered. An origin keeps every distinct destination it links
// to; repeating a link is a no-op. Returns whether the link is new.
func (g *Graph) LinkDomain(origin, destination string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.domains[origin]; !exists {
		return false, fmt.Errorf("cannot link %s -> %s: %w: %s", origin, destination, ErrDomainNotFound, origin)
	}
	if _, exists := g.domains[destination]; !exists {
		return false, fmt.Errorf("cannot link %s -> %s: %w: %s", origin, destination, ErrDomainNotFound, destination)
	}

	if g.linked[origin] == nil {
		g.linked[origin] = make(map[string]bool)
	}
	if g.linked[origin][destination] {
		return false, nil
	}
	g.linked[origin][destination] = true
	g.links[origin] = append(g.links[origin], destination)
	g.edgeCount++
	return true, nil
}

// Destinations returns the hosts origin links to, in link order
func (g *Graph) Destinations(origin string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, len(g.links[origin]))
	copy(out, g.links[origin])
	return out
}

// GetStats returns current graph statistics
func (g *Graph) GetStats() (domainCount, edgeCount int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.domains), g.edgeCount
}

// Snapshot numbers domains from 0 in registration order and lists one edge
// per recorded link.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := Snapshot{
		Nodes: make([]NodeView, 0, len(g.order)),
		Edges: make([]EdgeView, 0, g.edgeCount),
	}

	for id, host := range g.order {
		snap.Nodes = append(snap.Nodes, NodeView{ID: id, Label: host})
	}

	for _, origin := range g.order {
		for _, destination := range g.links[origin] {
			snap.Edges = append(snap.Edges, EdgeView{
				From: g.ids[origin],
				To:   g.ids[destination],
			})
		}
	}

	return snap
}

// Flush writes every domain and link to the SQLite export
func (g *Graph) Flush(store *storage.Storage) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	startTime := time.Now()
	g.log.Info("Starting flush to database...")

	nodesWritten := 0
	edgesWritten := 0
	var firstErr error

	// Export IDs are assigned by the database
	idMap := make(map[string]int)
	for _, host := range g.order {
		d := g.domains[host]
		nodeID, err := store.UpsertNode(storage.Node{
			DomainName: d.Host,
			Protocol:   d.Protocol,
			PathCount:  d.Paths.Size(),
			Crawled:    d.Crawled(),
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			g.log.Warnf("Failed to flush domain %s: %v", host, err)
			continue
		}
		idMap[host] = nodeID
		nodesWritten++
	}

	for _, origin := range g.order {
		for _, destination := range g.links[origin] {
			fromID, fromExists := idMap[origin]
			toID, toExists := idMap[destination]
			if !fromExists || !toExists {
				g.log.Warnf("Skipping edge %s -> %s: domain was not exported", origin, destination)
				continue
			}

			if err := store.UpsertEdge(fromID, toID); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				g.log.Warnf("Failed to flush edge %s -> %s: %v", origin, destination, err)
				continue
			}
			edgesWritten++
		}
	}

	g.log.Infof("Flush complete: %d domains, %d edges written in %v", nodesWritten, edgesWritten, time.Since(startTime))
	return firstErr
}
