package sink

import (
	"log"
	"sort"
	"sync"
	"time"

	"TrafficTally/internal/engine/aggregator"
	"TrafficTally/internal/model"
)

// Writer exports one observation set: a snapshot of every location's counts
// taken at a single tick. Writers are export-only; nothing is ever read back
// to restore counter state.
type Writer interface {
	Write(report model.Report, timestamp string) error

	// GetInterval returns the configured snapshot interval for this writer.
	GetInterval() time.Duration
}

// Runner drives one snapshot loop per writer. Each tick it snapshots all
// registered locations and hands the assembled report to the writer.
type Runner struct {
	registry *aggregator.Registry
	writers  []Writer
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewRunner creates a runner over the given registry and writers.
func NewRunner(registry *aggregator.Registry, writers []Writer) *Runner {
	return &Runner{
		registry: registry,
		writers:  writers,
		done:     make(chan struct{}),
	}
}

// Start launches one snapshot goroutine per writer.
func (r *Runner) Start() {
	for _, writer := range r.writers {
		r.wg.Add(1)
		go r.run(writer)
		log.Printf("Started snapshot sink with interval %s", writer.GetInterval())
	}
}

// Stop signals every snapshot loop to take a final snapshot and exit, then
// waits for them to finish.
func (r *Runner) Stop() {
	close(r.done)
	r.wg.Wait()
	log.Println("Snapshot sinks stopped.")
}

func (r *Runner) run(writer Writer) {
	defer r.wg.Done()
	interval := writer.GetInterval()
	if interval <= 0 {
		log.Printf("Invalid interval %s for sink, snapshot loop will not run.", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush(writer)
		case <-r.done:
			r.flush(writer)
			return
		}
	}
}

func (r *Runner) flush(writer Writer) {
	report := snapshotAll(r.registry)
	if len(report) == 0 {
		return
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	if err := writer.Write(report, timestamp); err != nil {
		log.Printf("Error writing snapshot at %s: %v", timestamp, err)
	}
}

func snapshotAll(registry *aggregator.Registry) model.Report {
	aggs := registry.All()
	report := make(model.Report, 0, len(aggs))
	for _, agg := range aggs {
		report = append(report, model.LocationCounts{
			Location: agg.Location(),
			Data:     agg.Snapshot(),
		})
	}
	sort.Slice(report, func(i, j int) bool {
		return report[i].Location < report[j].Location
	})
	return report
}
