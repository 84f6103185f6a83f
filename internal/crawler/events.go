package crawler

import (
	"time"

	"github.com/sirupsen/logrus"
)

// EventKind identifies what happened during a crawl
type EventKind int

const (
	EventSeeded EventKind = iota
	EventDomainSkipped
	EventRobotsFailed
	EventRedirected
	EventDomainStarted
	EventDomainCrawled
	EventDomainDiscovered
	EventEdgeRecorded
	EventPageFetched
	EventPageFailed
	EventPageDenied
	EventLinkSkipped
)

var eventNames = map[EventKind]string{
	EventSeeded:           "seeded",
	EventDomainSkipped:    "domain_skipped",
	EventRobotsFailed:     "robots_failed",
	EventRedirected:       "redirected",
	EventDomainStarted:    "domain_started",
	EventDomainCrawled:    "domain_crawled",
	EventDomainDiscovered: "domain_discovered",
	EventEdgeRecorded:     "edge_recorded",
	EventPageFetched:      "page_fetched",
	EventPageFailed:       "page_failed",
	EventPageDenied:       "page_denied",
	EventLinkSkipped:      "link_skipped",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event describes one step of the crawl
type Event struct {
	Kind EventKind
	Host string
	// URL is the fetched URL, or the href for link events
	URL string
	// Target is the other host of redirect, discovery and edge events
	Target     string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// EventFunc receives crawl events. It is called synchronously from the
// crawl loop.
type EventFunc func(Event)

// MultiEvents fans an event out to every non-nil handler
func MultiEvents(handlers ...EventFunc) EventFunc {
	return func(e Event) {
		for _, handle := range handlers {
			if handle != nil {
				handle(e)
			}
		}
	}
}

// LogEvents writes crawl events to a logrus logger
func LogEvents(log logrus.FieldLogger) EventFunc {
	return func(e Event) {
		fields := logrus.Fields{"event": e.Kind.String(), "host": e.Host}
		if e.URL != "" {
			fields["url"] = e.URL
		}
		if e.Target != "" {
			fields["target"] = e.Target
		}
		if e.StatusCode != 0 {
			fields["status"] = e.StatusCode
		}
		if e.Duration > 0 {
			fields["duration"] = e.Duration
		}
		entry := log.WithFields(fields)
		if e.Err != nil {
			entry = entry.WithError(e.Err)
		}

		switch e.Kind {
		case EventRobotsFailed, EventPageFailed:
			entry.Warn("Fetch failed")
		case EventDomainStarted:
			entry.Info("Crawling domain")
		case EventDomainCrawled:
			entry.Info("Finished domain")
		case EventRedirected:
			entry.Info("Domain redirected")
		case EventEdgeRecorded:
			entry.Infof("Edge: %s -> %s", e.Host, e.Target)
		default:
			entry.Debug("Crawl event")
		}
	}
}
