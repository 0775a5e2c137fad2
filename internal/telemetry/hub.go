package telemetry

import (
	"sync"

	"thermal_regulator/internal/models"
)

// Message is one remote notification delivered to websocket subscribers.
type Message struct {
	Text  string                    `json:"text"`
	State models.ControllerSnapshot `json:"state"`
}

// Hub tracks live websocket subscribers. It is Connected while at least one is attached.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Message]struct{}
	buffer int
}

// NewHub returns a hub whose subscriber channels hold up to buffer pending messages.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[chan Message]struct{}), buffer: buffer}
}

// Subscribe attaches a subscriber. The returned cancel func detaches it and closes the channel.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Connected() bool { return h.Subscribers() > 0 }

// Notify delivers to every subscriber without blocking; a subscriber whose buffer is full misses
// this message.
func (h *Hub) Notify(s models.ControllerSnapshot) error {
	msg := Message{Text: Notification(s), State: s}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}
