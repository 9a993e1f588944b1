package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrafficTally/internal/api"
	"TrafficTally/internal/config"
	"TrafficTally/internal/engine/aggregator"
	"TrafficTally/internal/engine/parser"
	"TrafficTally/internal/engine/query"
	"TrafficTally/internal/ingest"
	"TrafficTally/internal/model"
	"TrafficTally/internal/sink"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	queryTimeout := query.DefaultTimeout
	if cfg.Server.QueryTimeout != "" {
		queryTimeout, err = time.ParseDuration(cfg.Server.QueryTimeout)
		if err != nil {
			log.Fatalf("Invalid query_timeout: %v", err)
		}
	}

	registry := aggregator.NewRegistry()
	coordinator := query.NewCoordinator(query.FromRegistry(registry), queryTimeout)

	applyBatch := func(batch model.SensorBatch) {
		registry.GetOrCreate(batch.Location).ApplyBatch(parser.Parse(batch.Data))
	}

	// Optional message-bus ingest path alongside HTTP.
	if cfg.NATS.Enabled {
		subscriber, err := ingest.NewSubscriber(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			log.Fatalf("Failed to connect NATS subscriber: %v", err)
		}
		if err := subscriber.Start(applyBatch); err != nil {
			log.Fatalf("Failed to subscribe to '%s': %v", cfg.NATS.Subject, err)
		}
		defer subscriber.Close()
	}

	writers, err := buildSinks(cfg)
	if err != nil {
		log.Fatalf("Failed to build snapshot sinks: %v", err)
	}
	var runner *sink.Runner
	if len(writers) > 0 {
		runner = sink.NewRunner(registry, writers)
		runner.Start()
	}

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: api.NewServer(registry, coordinator).Router(),
	}

	go func() {
		log.Printf("Gateway starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Gateway shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if runner != nil {
		runner.Stop()
	}
	log.Println("Gateway exited.")
}

func buildSinks(cfg *config.Config) ([]sink.Writer, error) {
	var writers []sink.Writer
	for _, def := range cfg.Sinks {
		if !def.Enabled {
			continue
		}
		interval, err := time.ParseDuration(def.Interval)
		if err != nil {
			return nil, err
		}
		switch def.Type {
		case "gob":
			writers = append(writers, sink.NewGobWriter(def.Path, interval))
		case "clickhouse":
			writer, err := sink.NewClickHouseWriter(def.ClickHouse, interval)
			if err != nil {
				return nil, err
			}
			writers = append(writers, writer)
		default:
			log.Printf("Skipping unknown sink type '%s'", def.Type)
		}
	}
	return writers, nil
}
