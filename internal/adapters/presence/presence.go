// Package presence provides the PresencePublisher variants.
package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/nats-io/nats.go"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATS publishes presence updates as JSON to subject.<deviceId>.
type NATS struct {
	conn    Conn
	subject string
}

var _ capability.PresencePublisher = (*NATS)(nil)

// Connect dials url. Reconnects are left to the client's defaults.
func Connect(ctx context.Context, url, subject, clientName string) (*NATS, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, nats.Name(clientName))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	logr.FromContextOrDiscard(ctx).Info("connected to nats", "url", nc.ConnectedUrl(), "subject", subject)
	return New(nc, subject), nil
}

func New(conn Conn, subject string) *NATS {
	return &NATS{conn: conn, subject: subject}
}

func (p *NATS) Publish(ctx context.Context, status domain.PresenceStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode presence: %w", err)
	}
	subject := p.subject
	if status.DeviceID != "" {
		subject += "." + status.DeviceID
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish presence to %s: %w", subject, err)
	}
	logr.FromContextOrDiscard(ctx).V(1).Info("published presence", "subject", subject, "state", status.State)
	return nil
}

func (p *NATS) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// Noop is registered on mobile targets, where presence is reported by the
// push channel the shell owns.
type Noop struct{}

var _ capability.PresencePublisher = Noop{}

func (Noop) Publish(_ context.Context, status domain.PresenceStatus) error {
	return status.Validate()
}
