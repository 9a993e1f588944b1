package ingest

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"TrafficTally/internal/model"
)

// BatchHandler processes one decoded sensor batch.
type BatchHandler func(batch model.SensorBatch)

// Subscriber subscribes to a NATS subject and feeds decoded sensor batches
// to a handler. Malformed messages are dropped and logged; the subscription
// keeps running.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber connects to the NATS server and returns a subscriber for the
// given subject.
func NewSubscriber(url, subject string) (*Subscriber, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", url)
	return &Subscriber{nc: nc, subject: subject}, nil
}

// Start subscribes to the configured subject and processes every message
// with the provided handler.
func (s *Subscriber) Start(handler BatchHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		var batch model.SensorBatch
		if err := json.Unmarshal(msg.Data, &batch); err != nil {
			log.Printf("Dropping malformed sensor batch: %v", err)
			return
		}
		if batch.Location == "" {
			log.Println("Dropping sensor batch without a location")
			return
		}
		handler(batch)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for sensor batches...", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
