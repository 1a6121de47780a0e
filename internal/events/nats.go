package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type NATSBroker struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSBroker(url string, logger *zap.Logger) (*NATSBroker, error) {
	conn, err := nats.Connect(url, nats.Name("circulyte-backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("connected to NATS", zap.String("url", conn.ConnectedUrl()))
	return &NATSBroker{conn: conn, logger: logger}, nil
}

func (b *NATSBroker) Publish(_ context.Context, topic string, payload []byte) error {
	if err := b.conn.Publish(topic, payload); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", topic, err)
	}
	return nil
}

func (b *NATSBroker) Subscribe(topic string, h Handler) (func(), error) {
	sub, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		h(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil {
				b.logger.Warn("nats unsubscribe failed", zap.String("topic", topic), zap.Error(err))
			}
		})
	}, nil
}

func (b *NATSBroker) Close() error {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

var _ Broker = (*NATSBroker)(nil)
