package query

import (
	"context"
	"errors"
	"sort"
	"time"

	"TrafficTally/internal/engine/aggregator"
	"TrafficTally/internal/model"
)

// ErrTimeout reports that not every location replied before the query deadline.
var ErrTimeout = errors.New("query timed out before all locations replied")

// DefaultTimeout bounds a query's wait for snapshot replies.
const DefaultTimeout = 5 * time.Second

// Source is one snapshot-capable counter the coordinator fans out to.
type Source interface {
	Location() string
	Snapshot() model.CountMap
}

// Coordinator produces a consistent cross-location report per query. Each
// Collect call is its own short-lived fan-out/fan-in; two concurrent queries
// never share state, and neither blocks ingestion.
type Coordinator struct {
	sources func() []Source
	timeout time.Duration
}

// NewCoordinator creates a coordinator over the given source set. A
// non-positive timeout falls back to DefaultTimeout.
func NewCoordinator(sources func() []Source, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{sources: sources, timeout: timeout}
}

// FromRegistry adapts the aggregator registry to the coordinator's source set.
func FromRegistry(reg *aggregator.Registry) func() []Source {
	return func() []Source {
		aggs := reg.All()
		sources := make([]Source, len(aggs))
		for i, agg := range aggs {
			sources[i] = agg
		}
		return sources
	}
}

// Collect asks every currently-known location for a snapshot concurrently and
// joins all replies into a report ordered by location name. If the deadline
// elapses before every source has replied, the query resolves to ErrTimeout
// rather than a silently partial report. A timed-out query is terminal; the
// caller may issue a new one.
func (c *Coordinator) Collect(ctx context.Context) (model.Report, error) {
	sources := c.sources()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Buffered so late repliers never leak a goroutine after a timeout.
	replies := make(chan model.LocationCounts, len(sources))
	for _, src := range sources {
		go func(src Source) {
			replies <- model.LocationCounts{Location: src.Location(), Data: src.Snapshot()}
		}(src)
	}

	report := make(model.Report, 0, len(sources))
	for range sources {
		select {
		case entry := <-replies:
			report = append(report, entry)
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, ctx.Err()
		}
	}

	sort.Slice(report, func(i, j int) bool {
		return report[i].Location < report[j].Location
	})
	return report, nil
}
