package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"TrafficTally/internal/ingest"
	"TrafficTally/internal/model"
)

func main() {
	var (
		locations []string
		carsW     int
		motosW    int
		busesW    int
		vehicles  int
		period    time.Duration
		count     int
		serverURL string
		natsURL   string
		natsSubj  string
	)

	rootCmd := &cobra.Command{
		Use:   "tt-sensor",
		Short: "Simulated roadside vehicle sensor",
		Long: `Emits batches of vehicle detections for one or more locations.
Each batch draws vehicle types from a weighted car:motorcycle:bus
distribution and is delivered to the gateway over HTTP, or published
to NATS when --nats is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			distribution := buildDistribution(carsW, motosW, busesW)
			if len(distribution) == 0 {
				return fmt.Errorf("at least one vehicle weight must be positive")
			}

			emit, cleanup, err := newEmitter(serverURL, natsURL, natsSubj)
			if err != nil {
				return err
			}
			defer cleanup()

			var g errgroup.Group
			for _, location := range locations {
				location := location
				g.Go(func() error {
					return runSensor(location, distribution, vehicles, period, count, emit)
				})
			}
			return g.Wait()
		},
	}

	rootCmd.Flags().StringSliceVar(&locations, "locations", []string{"west-seattle-bridge"}, "Locations to emit batches for, one sensor each")
	rootCmd.Flags().IntVar(&carsW, "cars", 5, "Weight of the car vehicle type")
	rootCmd.Flags().IntVar(&motosW, "motorcycles", 1, "Weight of the motorcycle vehicle type")
	rootCmd.Flags().IntVar(&busesW, "buses", 2, "Weight of the bus vehicle type")
	rootCmd.Flags().IntVar(&vehicles, "vehicles", 10, "Vehicles detected per batch")
	rootCmd.Flags().DurationVar(&period, "period", 5*time.Second, "Delay between batches")
	rootCmd.Flags().IntVar(&count, "count", 0, "Number of batches to send per location (0 = forever)")
	rootCmd.Flags().StringVar(&serverURL, "url", "http://localhost:8080/sensorapi/data", "Gateway ingest URL")
	rootCmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL; when set, batches are published instead of POSTed")
	rootCmd.Flags().StringVar(&natsSubj, "subject", "sensors.batches", "NATS subject to publish batches to")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildDistribution expands the weights into a pool to draw labels from,
// e.g. 2:1:1 -> [car car motorcycle bus].
func buildDistribution(cars, motorcycles, buses int) []string {
	var pool []string
	for i := 0; i < cars; i++ {
		pool = append(pool, string(model.Car))
	}
	for i := 0; i < motorcycles; i++ {
		pool = append(pool, string(model.Motorcycle))
	}
	for i := 0; i < buses; i++ {
		pool = append(pool, string(model.Bus))
	}
	return pool
}

type emitFunc func(batch model.SensorBatch) error

func newEmitter(serverURL, natsURL, subject string) (emitFunc, func(), error) {
	if natsURL != "" {
		publisher, err := ingest.NewPublisher(natsURL, subject)
		if err != nil {
			return nil, nil, err
		}
		return publisher.Publish, publisher.Close, nil
	}

	client := &http.Client{Timeout: 10 * time.Second}
	emit := func(batch model.SensorBatch) error {
		body, err := json.Marshal(batch)
		if err != nil {
			return err
		}
		resp, err := client.Post(serverURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("gateway rejected batch: %s", resp.Status)
		}
		return nil
	}
	return emit, func() {}, nil
}

func runSensor(location string, distribution []string, vehicles int, period time.Duration, count int, emit emitFunc) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	fmt.Printf("Sensor started at %s. %d vehicles every %s.\n", location, vehicles, period)

	for sent := 0; count == 0 || sent < count; sent++ {
		detected := make([]string, vehicles)
		for i := range detected {
			detected[i] = distribution[rng.Intn(len(distribution))]
		}

		batch := model.SensorBatch{Location: location, Data: detected}
		if err := emit(batch); err != nil {
			return fmt.Errorf("sensor at %s: %w", location, err)
		}

		time.Sleep(period)
	}
	return nil
}
