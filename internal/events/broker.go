// Package events carries change notifications for the collections that have
// a push contract (sources, vendors and users).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	TopicSourcesChanged = "circulyte.sources.changed"
	TopicVendorsChanged = "circulyte.vendors.changed"
	TopicUsersChanged   = "circulyte.users.changed"
)

// Change is the payload published on every topic.
type Change struct {
	Action   string    `json:"action"`
	EntityID string    `json:"entityId"`
	At       time.Time `json:"at"`
}

type Handler func(payload []byte)

// Broker fans out payloads by topic. Subscribe returns the function that
// ends the subscription; calling it more than once is safe.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(topic string, h Handler) (func(), error)
	Close() error
}

// PublishChange marshals a Change and publishes it on topic.
func PublishChange(ctx context.Context, b Broker, topic, action, entityID string) error {
	payload, err := json.Marshal(Change{Action: action, EntityID: entityID, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("could not encode change: %w", err)
	}
	return b.Publish(ctx, topic, payload)
}

// LocalBroker delivers in-process, synchronously, in subscription order.
type LocalBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
	order  map[string][]int
	closed bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{
		subs:  make(map[string]map[int]Handler),
		order: make(map[string][]int),
	}
}

func (b *LocalBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("broker closed")
	}
	handlers := make([]Handler, 0, len(b.order[topic]))
	for _, id := range b.order[topic] {
		if h, ok := b.subs[topic][id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	return nil
}

func (b *LocalBroker) Subscribe(topic string, h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("broker closed")
	}

	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = h
	b.order[topic] = append(b.order[topic], id)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}, nil
}

func (b *LocalBroker) remove(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[topic], id)
	ids := b.order[topic]
	for i, v := range ids {
		if v == id {
			b.order[topic] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
}

// Subscribers reports how many handlers are attached to topic.
func (b *LocalBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string]map[int]Handler)
	b.order = make(map[string][]int)
	return nil
}

var _ Broker = (*LocalBroker)(nil)
