package sink

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"TrafficTally/internal/model"
)

// SummaryData holds the metadata for an on-disk snapshot.
type SummaryData struct {
	Locations     int    `json:"locations"`
	TotalVehicles uint64 `json:"total_vehicles"`
	Timestamp     string `json:"timestamp"`
}

// GobWriter writes observation sets to disk in gob format, one timestamped
// directory per snapshot. It implements the Writer interface.
type GobWriter struct {
	rootPath string
	interval time.Duration
}

// NewGobWriter creates a new on-disk snapshot writer.
func NewGobWriter(rootPath string, interval time.Duration) *GobWriter {
	return &GobWriter{rootPath: rootPath, interval: interval}
}

// GetInterval returns the configured snapshot interval for this writer.
func (w *GobWriter) GetInterval() time.Duration {
	return w.interval
}

// Write serializes one observation set to a timestamped directory: a gob
// file with the per-location counts plus a summary.json.
func (w *GobWriter) Write(report model.Report, timestamp string) error {
	snapshotDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	counts := make(map[string]model.CountMap, len(report))
	var totalVehicles uint64
	for _, entry := range report {
		counts[entry.Location] = entry.Data
		totalVehicles += entry.Data.Total()
	}

	countsPath := filepath.Join(snapshotDir, "counts.dat")
	file, err := os.Create(countsPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", countsPath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(counts); err != nil {
		return fmt.Errorf("failed to encode counts to gob: %w", err)
	}

	summary := SummaryData{
		Locations:     len(report),
		TotalVehicles: totalVehicles,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	summaryPath := filepath.Join(snapshotDir, "summary.json")
	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	encoder := json.NewEncoder(summaryFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}

	return nil
}
