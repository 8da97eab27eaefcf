package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/nats-io/nats.go"
)

// conn is the subset of *nats.Conn used by the publisher.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON-encoded events to NATS.
type NATSPublisher struct {
	conn conn
	log  logging.Logger
}

// ConnectNATS dials url and returns a publisher that reconnects forever.
func ConnectNATS(url string, log logging.Logger) (*NATSPublisher, error) {
	l := log.With("module", "events")
	ctx := context.Background()

	opts := []nats.Option{
		nats.Name("talkscribe-server"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			l.Warn(ctx, "nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			l.Info(ctx, "nats reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	l.Info(ctx, "connected to nats", "url", nc.ConnectedUrl())
	return &NATSPublisher{conn: nc, log: l}, nil
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, ev TranscriptEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	p.log.Debug(ctx, "event published", "subject", subject, "id", ev.ID)
	return nil
}

func (p *NATSPublisher) TranscriptCreated(ctx context.Context, ev TranscriptEvent) error {
	return p.publish(ctx, SubjectTranscriptCreated, ev)
}

func (p *NATSPublisher) TranscriptDeleted(ctx context.Context, ev TranscriptEvent) error {
	return p.publish(ctx, SubjectTranscriptDeleted, ev)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
