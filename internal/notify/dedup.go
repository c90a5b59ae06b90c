package notify

import (
	"sync"
	"time"
)

// dedupPruneAt bounds the seen map; expired entries are swept once it grows
// past this many keys.
const dedupPruneAt = 1024

// Dedup suppresses repeat alerts for the same opportunity within a cooldown
// window, so an edge that persists across passes does not page the operator
// every pass. Safe for concurrent use.
type Dedup struct {
	seen     map[string]time.Time
	cooldown time.Duration
	mu       sync.Mutex
}

// NewDedup creates a Dedup with the given cooldown.
func NewDedup(cooldown time.Duration) *Dedup {
	return &Dedup{
		seen:     make(map[string]time.Time),
		cooldown: cooldown,
	}
}

// Fresh reports whether the key has not been alerted within the cooldown
// window. A fresh key is recorded so subsequent calls see it as stale until
// the window elapses.
func (d *Dedup) Fresh(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if last, ok := d.seen[key]; ok && now.Sub(last) < d.cooldown {
		return false
	}

	if len(d.seen) >= dedupPruneAt {
		for k, ts := range d.seen {
			if now.Sub(ts) >= d.cooldown {
				delete(d.seen, k)
			}
		}
	}

	d.seen[key] = now
	return true
}
