package aggregator

import (
	"sync"

	"TrafficTally/internal/model"
)

// LocationAggregator owns the cumulative vehicle counts for a single
// location. A RWMutex serializes batch application against snapshots, so a
// snapshot always reflects a whole number of applied batches. Each location
// has its own lock; heavy traffic at one location never blocks another.
type LocationAggregator struct {
	location string

	mu     sync.RWMutex
	counts model.CountMap
}

// NewLocationAggregator returns a zero-initialized aggregator for location.
func NewLocationAggregator(location string) *LocationAggregator {
	return &LocationAggregator{
		location: location,
		counts:   model.NewCountMap(),
	}
}

// Location returns the location this aggregator owns.
func (a *LocationAggregator) Location() string {
	return a.location
}

// ApplyBatch adds the parsed counts of one sensor batch into the running
// totals. Safe for concurrent use with other ApplyBatch and Snapshot calls.
func (a *LocationAggregator) ApplyBatch(batch model.CountMap) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts.Add(batch)
}

// Snapshot returns an independent copy of the current totals. The copy
// reflects a state that existed at some instant, never a partially applied
// batch.
func (a *LocationAggregator) Snapshot() model.CountMap {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.counts.Clone()
}
