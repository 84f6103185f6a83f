package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/web-spider/internal/crawler"
	"github.com/alvmarrod/web-spider/internal/metrics"
	"github.com/alvmarrod/web-spider/internal/storage"
	"github.com/alvmarrod/web-spider/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const progressInterval = 10 * time.Second

// NewCrawlCmd creates the crawl command
func NewCrawlCmd(opts *rootOptions) *cobra.Command {
	var maxDomains int

	cmd := &cobra.Command{
		Use:   "crawl [seed-url]",
		Short: "Crawl from a seed URL until the domain budget is spent",
		Long: `Crawl starts at the seed URL (or seed_url from the config file) and
walks domains until the frontier is empty or max_domains domains have been
crawled. The graph is written to db_path when it is set, and crawl metrics
to metrics_path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.cfg.SeedURL = args[0]
			}
			if maxDomains > 0 {
				opts.cfg.MaxDomains = maxDomains
			}
			if opts.cfg.SeedURL == "" {
				return errors.New("no seed URL: pass one as argument or set seed_url")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCrawl(ctx, opts)
		},
	}

	cmd.Flags().IntVar(&maxDomains, "max-domains", 0, "Total domains to crawl (overrides max_domains)")

	return cmd
}

// session bundles a crawler with the trackers fed by its events
type session struct {
	opts    *rootOptions
	crawler *crawler.Crawler
	tracker *metrics.Tracker
}

func newSession(opts *rootOptions, reg prometheus.Registerer) (*session, error) {
	cfg := opts.cfg
	tracker := metrics.NewTracker(reg)
	fetcher := crawler.NewCollyFetcher(cfg.UserAgent, cfg.ClientTimeout())

	c, err := crawler.NewCrawler(cfg, fetcher,
		crawler.MultiEvents(crawler.LogEvents(opts.log), tracker.Observe),
		crawler.WithLogger(opts.log),
	)
	if err != nil {
		return nil, err
	}

	return &session{opts: opts, crawler: c, tracker: tracker}, nil
}

// finish writes the metrics file and, when db_path is set, exports the
// graph together with a summary of the run
func (s *session) finish(reason string) error {
	log := s.opts.log
	cfg := s.opts.cfg
	var errs []error

	log.Info("Final stats: " + s.tracker.LogProgress())
	domains, edges := s.crawler.Graph().GetStats()
	log.Infof("Graph holds %d domains and %d links", domains, edges)

	if err := s.tracker.WriteToFile(cfg.MetricsPath, reason); err != nil {
		log.Errorf("Failed to write metrics: %v", err)
		errs = append(errs, err)
	} else {
		log.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	if cfg.DBPath != "" {
		if err := s.export(cfg.DBPath); err != nil {
			log.Errorf("Failed to export graph: %v", err)
			errs = append(errs, err)
		} else {
			log.Infof("Graph exported to %s", cfg.DBPath)
		}
	}

	return errors.Join(errs...)
}

func (s *session) export(dbPath string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := s.crawler.Graph().Flush(store); err != nil {
		return err
	}
	if _, err := store.SaveRun(s.tracker.GetSnapshot()); err != nil {
		return err
	}

	return s.logExport(store)
}

// logExport reports what the database holds after an export. The file may
// carry domains and runs from earlier crawls.
func (s *session) logExport(store *storage.Storage) error {
	nodes, err := store.Nodes()
	if err != nil {
		return err
	}
	edges, err := store.Edges()
	if err != nil {
		return err
	}
	runs, err := store.RunCount()
	if err != nil {
		return err
	}

	crawled := 0
	for _, n := range nodes {
		if n.Crawled {
			crawled++
		}
	}
	s.opts.log.Infof("Database holds %d domains (%d crawled), %d links and %d runs",
		len(nodes), crawled, len(edges), runs)
	return nil
}

func runCrawl(ctx context.Context, opts *rootOptions) error {
	log := opts.log
	cfg := opts.cfg
	log.Infof("Web Spider %s starting...", version.String())
	log.Infof("Configuration loaded: seed=%s, max_domains=%d, default_permission=%s",
		cfg.SeedURL, cfg.MaxDomains, cfg.DefaultPermission)

	s, err := newSession(opts, nil)
	if err != nil {
		return err
	}
	if _, err := s.crawler.Seed(cfg.SeedURL); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				log.Info(s.tracker.LogProgress())
			case <-progressCtx.Done():
				return
			}
		}
	}()

	reason := "budget_reached"
	if err := s.crawler.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		log.Warn("Crawl interrupted")
		reason = "signal"
	} else if s.crawler.Frontier().IsEmpty() {
		reason = "queue_empty"
	}
	stopProgress()

	log.Infof("Crawl finished (%s): %d domains crawled", reason, s.crawler.Crawled())

	return s.finish(reason)
}
