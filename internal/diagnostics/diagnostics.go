// Package diagnostics reports a point-in-time process snapshot (goroutine
// count, memory, CPU), cached for a short TTL to keep it cheap to poll.
//
// Grounded on the teacher's metrics.Collector: a TTL-cached snapshot behind
// a sync.RWMutex, gopsutil for process-level CPU/memory figures.
package diagnostics

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessSnapshot is a point-in-time process gauge, not an accumulator.
type ProcessSnapshot struct {
	Goroutines int
	MemoryMB   float64
	CPUPercent float64
}

// Collector produces a ProcessSnapshot, caching it for cacheDuration.
type Collector struct {
	cacheDuration time.Duration

	mu          sync.RWMutex
	cached      ProcessSnapshot
	cacheExpiry time.Time
	haveCached  bool
}

// NewCollector returns a Collector caching snapshots for cacheDuration.
// A non-positive cacheDuration disables caching (every call recomputes).
func NewCollector(cacheDuration time.Duration) *Collector {
	return &Collector{cacheDuration: cacheDuration}
}

// Snapshot returns the current process diagnostics, serving a cached value
// when still fresh.
func (c *Collector) Snapshot(ctx context.Context) ProcessSnapshot {
	c.mu.RLock()
	if c.haveCached && time.Now().Before(c.cacheExpiry) {
		snap := c.cached
		c.mu.RUnlock()
		return snap
	}
	c.mu.RUnlock()

	snap := collect()

	c.mu.Lock()
	c.cached = snap
	c.cacheExpiry = time.Now().Add(c.cacheDuration)
	c.haveCached = true
	c.mu.Unlock()

	return snap
}

func collect() ProcessSnapshot {
	snap := ProcessSnapshot{Goroutines: runtime.NumGoroutine()}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return snap
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		snap.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		snap.MemoryMB = float64(mem.RSS) / (1024 * 1024)
	}
	return snap
}
