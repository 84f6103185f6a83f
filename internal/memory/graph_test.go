package memory

import (
	"path/filepath"
	"testing"

	"github.com/alvmarrod/web-spider/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) (*Graph, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewGraph(DefaultMaxPathNodes, logger), hook
}

func mustLink(t *testing.T, g *Graph, origin, destination string) {
	t.Helper()
	_, err := g.LinkDomain(origin, destination)
	require.NoError(t, err)
}

func TestGraph_AddDomainOnce(t *testing.T) {
	g, hook := newTestGraph(t)

	assert.True(t, g.AddDomain("https", "www.example.com"))
	assert.False(t, g.AddDomain("https", "www.example.com"))

	count, _ := g.GetStats()
	assert.Equal(t, 1, count)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "www.example.com", hook.LastEntry().Data["host"])
}

func TestGraph_InsertKeepsPaths(t *testing.T) {
	g, _ := newTestGraph(t)

	d := NewDomain("https", "www.example.com", DefaultMaxPathNodes)
	d.Paths.AddPath("/seed")
	require.True(t, g.Insert(d))

	got, err := g.Domain("www.example.com")
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.NotNil(t, got.Paths.Root().Child("seed"))
}

func TestGraph_DomainNotFound(t *testing.T) {
	g, _ := newTestGraph(t)

	assert.False(t, g.HasDomain("missing.com"))
	_, err := g.Domain("missing.com")
	assert.ErrorIs(t, err, ErrDomainNotFound)
}

func TestGraph_LinkDomain(t *testing.T) {
	g, _ := newTestGraph(t)
	g.AddDomain("https", "a.com")
	g.AddDomain("https", "b.com")
	g.AddDomain("http", "c.com")

	added, err := g.LinkDomain("a.com", "b.com")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = g.LinkDomain("a.com", "c.com")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = g.LinkDomain("a.com", "b.com")
	require.NoError(t, err)
	assert.False(t, added, "repeated link")

	assert.Equal(t, []string{"b.com", "c.com"}, g.Destinations("a.com"))
	_, edges := g.GetStats()
	assert.Equal(t, 2, edges)
}

func TestGraph_LinkUnregistered(t *testing.T) {
	g, _ := newTestGraph(t)
	g.AddDomain("https", "a.com")

	_, err := g.LinkDomain("a.com", "nope.com")
	assert.ErrorIs(t, err, ErrDomainNotFound)
	_, err = g.LinkDomain("nope.com", "a.com")
	assert.ErrorIs(t, err, ErrDomainNotFound)
	assert.Empty(t, g.Destinations("a.com"))
}

func TestGraph_Snapshot(t *testing.T) {
	g, _ := newTestGraph(t)
	g.AddDomain("https", "a.com")
	g.AddDomain("https", "b.com")
	g.AddDomain("https", "c.com")
	mustLink(t, g, "b.com", "c.com")
	mustLink(t, g, "a.com", "b.com")
	mustLink(t, g, "a.com", "c.com")

	snap := g.Snapshot()

	assert.Equal(t, []NodeView{
		{ID: 0, Label: "a.com"},
		{ID: 1, Label: "b.com"},
		{ID: 2, Label: "c.com"},
	}, snap.Nodes)
	assert.Equal(t, []EdgeView{
		{From: 0, To: 1},
		{From: 0, To: 2},
		{From: 1, To: 2},
	}, snap.Edges)
}

func TestGraph_EmptySnapshot(t *testing.T) {
	g, _ := newTestGraph(t)

	snap := g.Snapshot()
	assert.NotNil(t, snap.Nodes)
	assert.NotNil(t, snap.Edges)
	assert.Empty(t, snap.Nodes)
}

func TestGraph_Flush(t *testing.T) {
	g, _ := newTestGraph(t)
	g.AddDomain("https", "a.com")
	g.AddDomain("http", "b.com")
	mustLink(t, g, "a.com", "b.com")

	a, err := g.Domain("a.com")
	require.NoError(t, err)
	a.Paths.AddPath("/x/y")
	a.MarkCrawled()

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, g.Flush(store))

	nodes, err := store.Nodes()
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	node, other := nodes[0], nodes[1]
	assert.Equal(t, "a.com", node.DomainName)
	assert.Equal(t, "https", node.Protocol)
	assert.Equal(t, 2, node.PathCount)
	assert.True(t, node.Crawled)

	assert.Equal(t, "b.com", other.DomainName)
	assert.False(t, other.Crawled)

	edges, err := store.Edges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, node.NodeID, edges[0].FromNodeID)
	assert.Equal(t, other.NodeID, edges[0].ToNodeID)
}
