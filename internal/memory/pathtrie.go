package memory

import (
	"iter"
	"strings"
)

// DefaultMaxPathNodes bounds how many path segments one domain may hold
const DefaultMaxPathNodes = 50

// PathNode is one path segment discovered on a domain
type PathNode struct {
	Name          string
	Visited       bool
	EndsWithSlash bool
	children      []*PathNode
	index         map[string]*PathNode
}

func newPathNode(name string) *PathNode {
	return &PathNode{
		Name:  name,
		index: make(map[string]*PathNode),
	}
}

// Children returns the child segments in the order they were discovered
func (n *PathNode) Children() []*PathNode {
	return n.children
}

// Child returns the direct child named name, or nil
func (n *PathNode) Child(name string) *PathNode {
	return n.index[name]
}

// PathTrie deduplicates the paths discovered on one domain and hands out
// each of them exactly once. It holds at most maxNodes segments below the
// root; new segments beyond that are dropped.
type PathTrie struct {
	root     *PathNode
	size     int
	maxNodes int
}

// NewPathTrie creates an empty trie. maxNodes <= 0 means no limit.
func NewPathTrie(maxNodes int) *PathTrie {
	return &PathTrie{
		root:     newPathNode(""),
		maxNodes: maxNodes,
	}
}

// Root returns the root node (empty name)
func (t *PathTrie) Root() *PathNode {
	return t.root
}

// Size returns the number of segments stored below the root
func (t *PathTrie) Size() int {
	return t.size
}

// Full reports whether the node ceiling has been reached
func (t *PathTrie) Full() bool {
	return t.maxNodes > 0 && t.size >= t.maxNodes
}

// AddPath stores path segment by segment. Empty and whitespace-only
// segments are ignored.
// Returns the number of new segments created; once the trie is full the
// remainder of the path is silently dropped.
func (t *PathTrie) AddPath(path string) int {
	current := t.root
	added := 0

	for _, segment := range strings.Split(path, "/") {
		if strings.TrimSpace(segment) == "" {
			continue
		}

		child, ok := current.index[segment]
		if !ok {
			if t.Full() {
				return added
			}
			child = newPathNode(segment)
			current.index[segment] = child
			current.children = append(current.children, child)
			t.size++
			added++
		}
		current = child
	}

	if strings.HasSuffix(path, "/") {
		current.EndsWithSlash = true
	}

	return added
}

// UnvisitedPaths returns the paths not handed out yet, parents before
// children. A path is marked visited as soon as it is produced, so an
// abandoned iteration still consumes what it reached.
func (t *PathTrie) UnvisitedPaths() iter.Seq[string] {
	return func(yield func(string) bool) {
		cursor := t.Cursor()
		for {
			path, ok := cursor.Next()
			if !ok || !yield(path) {
				return
			}
		}
	}
}

// Drain marks every unvisited path visited and returns them in order
func (t *PathTrie) Drain() []string {
	var paths []string
	for path := range t.UnvisitedPaths() {
		paths = append(paths, path)
	}
	return paths
}

// Cursor starts a pre-order walk over the current trie
func (t *PathTrie) Cursor() *Cursor {
	return &Cursor{pending: []pendingNode{{node: t.root, prefix: "/"}}}
}

type pendingNode struct {
	node   *PathNode
	prefix string
}

// Cursor walks a PathTrie with an explicit stack of pending nodes
type Cursor struct {
	pending []pendingNode
}

// Next returns the next unvisited path and marks it visited.
// ok is false once the walk is exhausted.
func (c *Cursor) Next() (string, bool) {
	for len(c.pending) > 0 {
		top := c.pending[len(c.pending)-1]
		c.pending = c.pending[:len(c.pending)-1]

		path := top.prefix
		if top.node.Name != "" {
			path += top.node.Name + "/"
		}

		children := top.node.children
		for i := len(children) - 1; i >= 0; i-- {
			c.pending = append(c.pending, pendingNode{node: children[i], prefix: path})
		}

		if !top.node.Visited {
			top.node.Visited = true
			return path, true
		}
	}
	return "", false
}
