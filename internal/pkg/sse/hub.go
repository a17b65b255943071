// Package sse fans per-user session events out to open event streams.
package sse

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// streamBuffer is how many events a stream may lag behind before new ones are dropped.
const streamBuffer = 10

// Event is one server-sent event addressed to a user.
type Event struct {
	UserID string
	Event  string
	Data   any
}

// Publisher is the write side of the hub used by services.
type Publisher interface {
	Publish(userID string, event Event)
}

type stream struct {
	id uint64
	ch chan Event
}

// Hub keeps every open stream of every user. The zero value is not usable; call NewHub.
type Hub struct {
	mu      sync.Mutex
	streams map[string][]stream
	nextID  uint64
	closed  bool
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{streams: make(map[string][]stream)}
}

// Subscribe opens a stream for userID. The returned cancel func is idempotent and
// closes the channel. After Close the channel is returned already closed.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, streamBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	h.nextID++
	s := stream{id: h.nextID, ch: ch}
	h.streams[userID] = append(h.streams[userID], s)

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(userID, s.id) })
	}
}

func (h *Hub) remove(userID string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.streams[userID]
	for i, s := range list {
		if s.id != id {
			continue
		}
		close(s.ch)
		list = append(list[:i], list[i+1:]...)
		break
	}
	if len(list) == 0 {
		delete(h.streams, userID)
		return
	}
	h.streams[userID] = list
}

// Publish never blocks: a stream whose buffer is full misses the event.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	event.UserID = userID
	for _, s := range h.streams[userID] {
		select {
		case s.ch <- event:
		default:
			h.dropped.Add(1)
			slog.Warn("SSE stream lagging, event dropped", "user_id", userID, "event", event.Event)
		}
	}
}

// Close ends every open stream and refuses new ones. Used on server shutdown so
// long-lived event requests return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userID, list := range h.streams {
		for _, s := range list {
			close(s.ch)
		}
		delete(h.streams, userID)
	}
}

func (h *Hub) SubscriberCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams[userID])
}

// Dropped reports how many events were discarded for slow streams.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
