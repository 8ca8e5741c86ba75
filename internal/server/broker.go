package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/playperu/tambola/internal/game"
)

// Message is one encoded room event delivered to a subscriber.
type Message struct {
	Type game.EventType
	Data []byte
}

// Broker is an in-process pub/sub for room events, keyed by room ID. It
// implements game.Notifier.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Message]struct{}
	logger *slog.Logger
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		subs:   make(map[string]map[chan Message]struct{}),
		logger: logger,
	}
}

// Subscribe returns a channel that receives the events of the given room.
func (b *Broker) Subscribe(roomID string) chan Message {
	ch := make(chan Message, 64)
	b.mu.Lock()
	if b.subs[roomID] == nil {
		b.subs[roomID] = make(map[chan Message]struct{})
	}
	b.subs[roomID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the room's subscribers.
func (b *Broker) Unsubscribe(roomID string, ch chan Message) {
	b.mu.Lock()
	delete(b.subs[roomID], ch)
	if len(b.subs[roomID]) == 0 {
		delete(b.subs, roomID)
	}
	b.mu.Unlock()
}

// Subscribers reports how many channels listen on the room.
func (b *Broker) Subscribers(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[roomID])
}

// Publish sends an event to all subscribers of the room without blocking.
func (b *Broker) Publish(roomID string, ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("encoding event", "room", roomID, "type", ev.Type, "error", err)
		return
	}
	msg := Message{Type: ev.Type, Data: data}

	b.mu.RLock()
	for ch := range b.subs[roomID] {
		select {
		case ch <- msg:
		default:
			// Drop if subscriber is slow.
			b.logger.Warn("dropping event for slow subscriber", "room", roomID, "type", ev.Type)
		}
	}
	b.mu.RUnlock()
}

// Notifiers fans one event out to several notifiers in order.
type Notifiers []game.Notifier

func (ns Notifiers) Publish(roomID string, ev game.Event) {
	for _, n := range ns {
		n.Publish(roomID, ev)
	}
}
