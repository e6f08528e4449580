package realtime

import (
	"sync"
)

// TipMessage is the single message type carried on per-event topics
type TipMessage struct {
	Amount     float64 `json:"amount"`
	TipperName string  `json:"tipper_name"`
	Message    string  `json:"message"`
}

// subscriberBuffer bounds each subscriber channel. A subscriber that falls
// this far behind starts losing messages; delivery is best-effort and
// clients reconcile by reloading recent tips.
const subscriberBuffer = 16

// Broadcaster fans tip notifications out to subscribers of per-event
// topics. It is process-local: at-least-once delivery across instances is
// not provided, and dashboards must tolerate missed messages.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan TipMessage]struct{}
}

// NewBroadcaster creates a new broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[chan TipMessage]struct{}),
	}
}

// Subscribe registers a subscriber on an event topic. The returned cancel
// function must be called to release the subscription.
func (b *Broadcaster) Subscribe(eventID string) (<-chan TipMessage, func()) {
	ch := make(chan TipMessage, subscriberBuffer)

	b.mu.Lock()
	if b.subscribers[eventID] == nil {
		b.subscribers[eventID] = make(map[chan TipMessage]struct{})
	}
	b.subscribers[eventID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if subs, ok := b.subscribers[eventID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subscribers, eventID)
			}
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers a message to every subscriber of the event topic.
// Slow subscribers are skipped rather than blocking the publisher.
func (b *Broadcaster) Publish(eventID string, msg TipMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[eventID] {
		select {
		case ch <- msg:
		default:
			// subscriber buffer full, drop
		}
	}
}

// SubscriberCount returns the number of subscribers on an event topic
func (b *Broadcaster) SubscriberCount(eventID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventID])
}
