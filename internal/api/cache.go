package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/typedensity/typedensity/pkg/report"
)

// ReportCache is a thread-safe LRU cache of recently computed reports,
// keyed by run id.
type ReportCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*report.Report
	order   []string // oldest first
}

// NewReportCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 50.
func NewReportCache(maxSize int) *ReportCache {
	if maxSize <= 0 {
		maxSize = 50
	}
	return &ReportCache{
		maxSize: maxSize,
		entries: make(map[string]*report.Report),
	}
}

// NewReportCacheFromEnv creates a cache with size from REPORT_CACHE_SIZE.
func NewReportCacheFromEnv() *ReportCache {
	size := 0
	if v := os.Getenv("REPORT_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewReportCache(size)
}

// Get retrieves a report, or nil if not cached.
func (c *ReportCache) Get(runID string) *report.Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	rep, ok := c.entries[runID]
	if !ok {
		return nil
	}
	c.moveToEnd(runID)
	return rep
}

// Put adds a report, evicting the least recently used if full.
func (c *ReportCache) Put(rep *report.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[rep.RunID]; ok {
		c.entries[rep.RunID] = rep
		c.moveToEnd(rep.RunID)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[rep.RunID] = rep
	c.order = append(c.order, rep.RunID)
}

// Len returns the number of cached reports.
func (c *ReportCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ReportCache) moveToEnd(runID string) {
	for i, k := range c.order {
		if k == runID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, runID)
			return
		}
	}
}
