package crawler

import (
	"sync"
)

// SubdomainLimiter caps how many hosts of one registrable domain may be
// registered. A limit <= 0 admits every host.
type SubdomainLimiter struct {
	maxPerRoot int
	mu         sync.RWMutex
	hosts      map[string]map[string]bool // root domain -> hosts
}

// NewSubdomainLimiter creates a new subdomain limiter
func NewSubdomainLimiter(maxPerRoot int) *SubdomainLimiter {
	return &SubdomainLimiter{
		maxPerRoot: maxPerRoot,
		hosts:      make(map[string]map[string]bool),
	}
}

// CanAdd checks if a host can be added without exceeding the limit.
// Does not modify state: use Add to register the host.
func (sl *SubdomainLimiter) CanAdd(host string) bool {
	if sl.maxPerRoot <= 0 {
		return true
	}

	sl.mu.RLock()
	defer sl.mu.RUnlock()

	set := sl.hosts[ExtractRootDomain(host)]
	return set[host] || len(set) < sl.maxPerRoot
}

// Add registers a host with the limiter.
// Returns false if the limit for its root domain is already reached.
func (sl *SubdomainLimiter) Add(host string) bool {
	root := ExtractRootDomain(host)

	sl.mu.Lock()
	defer sl.mu.Unlock()

	set := sl.hosts[root]
	if set == nil {
		set = make(map[string]bool)
		sl.hosts[root] = set
	}

	if set[host] {
		return true
	}
	if sl.maxPerRoot > 0 && len(set) >= sl.maxPerRoot {
		return false
	}

	set[host] = true
	return true
}

// Count returns the number of hosts registered for a root domain
func (sl *SubdomainLimiter) Count(root string) int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return len(sl.hosts[root])
}
