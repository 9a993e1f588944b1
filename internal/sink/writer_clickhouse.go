package sink

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"TrafficTally/internal/config"
	"TrafficTally/internal/model"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS vehicle_counts (
    Timestamp   DateTime,
    Location    String,
    Cars        UInt64,
    Motorcycles UInt64,
    Buses       UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Location, Timestamp);
`

// ClickHouseWriter exports observation sets to a ClickHouse table for
// offline analysis. It implements the Writer interface.
type ClickHouseWriter struct {
	conn     driver.Conn
	interval time.Duration
}

// NewClickHouseWriter connects to ClickHouse, ensures the vehicle_counts
// table exists, and returns the writer.
func NewClickHouseWriter(cfg config.ClickHouseConfig, interval time.Duration) (*ClickHouseWriter, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseWriter{conn: conn, interval: interval}, nil
}

// GetInterval returns the configured snapshot interval for this writer.
func (w *ClickHouseWriter) GetInterval() time.Duration {
	return w.interval
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write inserts one row per location into the vehicle_counts table.
func (w *ClickHouseWriter) Write(report model.Report, timestamp string) error {
	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO vehicle_counts")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	snapshotTime, _ := time.Parse("2006-01-02_15-04-05", timestamp)

	for _, entry := range report {
		err = batch.Append(
			snapshotTime,
			entry.Location,
			entry.Data[model.Car],
			entry.Data[model.Motorcycle],
			entry.Data[model.Bus],
		)
		if err != nil {
			return fmt.Errorf("failed to append counts to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	log.Printf("Wrote %d location rows to ClickHouse for snapshot %s", len(report), timestamp)
	return nil
}
