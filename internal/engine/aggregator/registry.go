package aggregator

import (
	"sort"
	"sync"
)

// Registry is the process-wide mapping from location name to its aggregator.
// Entries are created lazily on first use and live for the process lifetime;
// the mapping only ever grows.
type Registry struct {
	mu          sync.RWMutex
	aggregators map[string]*LocationAggregator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		aggregators: make(map[string]*LocationAggregator),
	}
}

// GetOrCreate returns the aggregator for location, creating it if this is
// the first time the location is seen. Concurrent calls for the same new
// location always converge on a single aggregator.
func (r *Registry) GetOrCreate(location string) *LocationAggregator {
	r.mu.RLock()
	agg, ok := r.aggregators[location]
	r.mu.RUnlock()
	if ok {
		return agg
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have created it between the two locks.
	if agg, ok := r.aggregators[location]; ok {
		return agg
	}
	agg = NewLocationAggregator(location)
	r.aggregators[location] = agg
	return agg
}

// Locations returns the sorted names of all known locations at call time.
func (r *Registry) Locations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	locations := make([]string, 0, len(r.aggregators))
	for location := range r.aggregators {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

// All returns the aggregator handles registered at the instant of the call.
// Locations added afterward are not part of the returned set.
func (r *Registry) All() []*LocationAggregator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	aggs := make([]*LocationAggregator, 0, len(r.aggregators))
	for _, agg := range r.aggregators {
		aggs = append(aggs, agg)
	}
	return aggs
}
