// Package hub fans task events out to connected subscribers in real time.
// The orchestrator publishes every event it emits; the hub delivers each one
// to every subscriber independently, so one slow or broken connection never
// stalls the others or the producing task.
package hub

import (
	"log"
	"sync"

	"github.com/ShryukGrandhi/urban/internal/orchestrator"
)

// subscriberBuffer is the per-subscriber event backlog. A subscriber that
// falls further behind than this starts losing events rather than applying
// backpressure to the producer.
const subscriberBuffer = 256

// Hub is a subscriber registry implementing orchestrator.Publisher.
type Hub struct {
	logger *log.Logger

	mu   sync.RWMutex
	subs map[string]chan orchestrator.Event
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{
		logger: log.Default(),
		subs:   make(map[string]chan orchestrator.Event),
	}
}

// Connect registers id and returns its event channel. Connecting an already
// connected id is a no-op returning the existing channel.
func (h *Hub) Connect(id string) <-chan orchestrator.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		return ch
	}
	ch := make(chan orchestrator.Event, subscriberBuffer)
	h.subs[id] = ch
	h.logger.Printf("[hub] subscriber %s connected (%d total)", id, len(h.subs))
	return ch
}

// Disconnect removes id and closes its channel. Disconnecting an unknown id
// is a no-op.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(ch)
	h.logger.Printf("[hub] subscriber %s disconnected (%d remaining)", id, len(h.subs))
}

// Send delivers an event to one subscriber, best-effort: unknown ids and
// full buffers drop the event.
func (h *Hub) Send(id string, ev orchestrator.Event) bool {
	h.mu.RLock()
	ch, ok := h.subs[id]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return h.deliver(id, ch, ev)
}

// Broadcast delivers an event to every connected subscriber. Each delivery
// is independent: a full buffer drops the event for that subscriber only.
func (h *Hub) Broadcast(ev orchestrator.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		h.deliver(id, ch, ev)
	}
}

func (h *Hub) deliver(id string, ch chan orchestrator.Event, ev orchestrator.Event) bool {
	select {
	case ch <- ev:
		return true
	default:
		h.logger.Printf("[hub] dropping %s event for slow subscriber %s", ev.Type, id)
		return false
	}
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
