package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/alvmarrod/web-spider/internal/config"
	"github.com/alvmarrod/web-spider/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestCrawlCmd_ExportsGraphAndMetrics(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>leaf</body></html>")
	}))
	defer other.Close()

	seed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			http.NotFound(w, r)
		case "/":
			fmt.Fprintf(w, `<html><body><a href="/about/">about</a><a href="%s/x">out</a></body></html>`, other.URL)
		default:
			fmt.Fprint(w, "<html><body></body></html>")
		}
	}))
	defer seed.Close()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "graph.db")
	metricsPath := filepath.Join(dir, "metrics.json")
	configPath := writeConfig(t, dir, fmt.Sprintf("db_path: %s\nmetrics_path: %s\nrequest_timeout_ms: 2000\n", dbPath, metricsPath))

	_, _, err := executeCmd(t, "--config", configPath, "--log-level", "debug", "crawl", seed.URL)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	var written storage.Metrics
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, 2, written.DomainsCrawled)
	assert.Equal(t, 1, written.EdgesRecorded)
	assert.Equal(t, "queue_empty", written.TerminationReason)

	store, err := storage.NewStorage(dbPath)
	require.NoError(t, err)
	defer store.Close()

	seedURL, _ := url.Parse(seed.URL)
	nodes, err := store.Nodes()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, seedURL.Host, nodes[0].DomainName)
	assert.True(t, nodes[0].Crawled)
	assert.Equal(t, 1, nodes[0].PathCount)

	edges, err := store.Edges()
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	runs, err := store.RunCount()
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func TestCrawlCmd_BudgetReached(t *testing.T) {
	other := httptest.NewServer(http.NotFoundHandler())
	defer other.Close()

	seed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<a href="%s/">out</a>`, other.URL)
	}))
	defer seed.Close()

	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "metrics.json")
	configPath := writeConfig(t, dir, fmt.Sprintf("metrics_path: %s\n", metricsPath))

	_, _, err := executeCmd(t, "--config", configPath, "crawl", "--max-domains", "1", seed.URL)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	var written storage.Metrics
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, 1, written.DomainsCrawled)
	assert.Equal(t, "budget_reached", written.TerminationReason)
}

func TestCrawlCmd_RequiresSeed(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, fmt.Sprintf("metrics_path: %s\n", filepath.Join(dir, "m.json")))

	_, _, err := executeCmd(t, "--config", configPath, "crawl")
	assert.ErrorContains(t, err, "no seed URL")

	_, _, err = executeCmd(t, "--config", configPath, "crawl", "ftp://example.com")
	assert.ErrorContains(t, err, "invalid seed")
}

func TestSession_FinishLogsGraphAndExport(t *testing.T) {
	logger, hook := test.NewNullLogger()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(dir, "graph.db")
	cfg.MetricsPath = filepath.Join(dir, "metrics.json")
	opts := &rootOptions{cfg: cfg, log: logger}

	s, err := newSession(opts, nil)
	require.NoError(t, err)
	graph := s.crawler.Graph()
	require.True(t, graph.AddDomain("https", "a.example.com"))
	require.True(t, graph.AddDomain("https", "b.example.org"))
	_, err = graph.LinkDomain("a.example.com", "b.example.org")
	require.NoError(t, err)

	require.NoError(t, s.finish("signal"))
	// A second export to the same file adds a run, not domains
	require.NoError(t, s.finish("signal"))

	var messages []string
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, "Graph holds 2 domains and 1 links")
	assert.Contains(t, messages, "Database holds 2 domains (0 crawled), 1 links and 1 runs")
	assert.Contains(t, messages, "Database holds 2 domains (0 crawled), 1 links and 2 runs")
}
