// Package eventbus publishes probe results to NATS for downstream
// consumers (alerting, dashboards). Publishing is best-effort.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
)

const resultSubject = "health.results"

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(natsURL string) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Connected to NATS at %s", natsURL)

	return &Publisher{conn: conn}, nil
}

// Record publishes one result. Implements the scheduler's sink contract;
// failures are reported to the caller who logs and moves on.
func (p *Publisher) Record(_ context.Context, result models.ProbeResult) error {
	if !p.IsConnected() {
		return fmt.Errorf("nats connection unavailable")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return p.conn.Publish(resultSubject, data)
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		log.Printf("Disconnected from NATS")
	}
}
