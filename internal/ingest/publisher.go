package ingest

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"TrafficTally/internal/model"
)

// Publisher publishes sensor batches to a NATS subject. It is the transport
// used by sensors deployed closer to the bus than to the HTTP gateway.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to the NATS server and returns a publisher for the
// given subject.
func NewPublisher(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", url)
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish serializes a sensor batch to JSON and publishes it. JSON is the
// system's single wire format, shared with the HTTP ingest path.
func (p *Publisher) Publish(batch model.SensorBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
