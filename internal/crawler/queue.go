package crawler

import (
	"sync"

	"github.com/alvmarrod/web-spider/internal/memory"
)

// Frontier is the double-ended queue of domains waiting to be crawled.
// New domains enter at the front and work is taken from the back. A host
// is queued at most once at a time.
type Frontier struct {
	mu     sync.Mutex
	items  []*memory.Domain
	queued map[string]bool // key: host
}

// NewFrontier creates an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{
		items:  make([]*memory.Domain, 0),
		queued: make(map[string]bool),
	}
}

// PushFront adds a domain at the front of the queue.
// Returns false if its host is already queued.
func (f *Frontier) PushFront(d *memory.Domain) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queued[d.Host] {
		return false
	}

	f.queued[d.Host] = true
	f.items = append(f.items, nil)
	copy(f.items[1:], f.items)
	f.items[0] = d

	return true
}

// PopBack removes and returns the domain at the back of the queue.
// Returns (nil, false) when the queue is empty.
func (f *Frontier) PopBack() (*memory.Domain, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return nil, false
	}

	last := len(f.items) - 1
	d := f.items[last]
	f.items[last] = nil
	f.items = f.items[:last]
	delete(f.queued, d.Host)

	return d, true
}

// IsEmpty returns true if the queue has no items
func (f *Frontier) IsEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) == 0
}

// Size returns the current number of items in the queue
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Hosts returns the queued hosts from front to back
func (f *Frontier) Hosts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	hosts := make([]string, len(f.items))
	for i, d := range f.items {
		hosts[i] = d.Host
	}
	return hosts
}
