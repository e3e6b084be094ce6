package broker

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// Producer publishes task events. Publishing is best-effort: callers log
// failures and move on, an unreachable broker never fails an operation.
type Producer interface {
	Publish(subject string, event TaskEvent) error
	Close()
}

type NatsProducer struct {
	conn *nats.Conn
}

func NewProducer(natsURL string) (*NatsProducer, error) {
	conn, err := nats.Connect(natsURL, nats.Name("taskman"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
	}
	log.Printf("Connected to NATS at %s", natsURL)
	return &NatsProducer{conn: conn}, nil
}

func (p *NatsProducer) Publish(subject string, event TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.conn.Publish(subject, data)
}

func (p *NatsProducer) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.Printf("Failed to drain NATS connection: %v", err)
	}
}
