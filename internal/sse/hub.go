package sse

import (
	"context"
	"sync"
	"sync/atomic"
)

const (
	TopicNotifications = "notifications"
	TopicBanner        = "banner"
	TopicChime         = "chime"
)

// Event is one frame for subscribers of Topic. Name becomes the SSE event
// name and Data is JSON encoded on the wire. A Coalesce event carries full
// state: when delivery backs up only the latest one per topic is kept.
type Event struct {
	Topic    string
	Name     string
	ID       string
	Data     any
	Coalesce bool

	seq uint64
}

type Client struct {
	Topic string
	Ch    chan Event
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	wake       chan struct{}
	pending    map[string]Event
	pendingMu  sync.Mutex
	seq        atomic.Uint64
	delivered  map[string]uint64
	topics     map[string]map[*Client]struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
		pending:    make(map[string]Event),
		delivered:  make(map[string]uint64),
		topics:     make(map[string]map[*Client]struct{}),
	}
}

func IsTopic(topic string) bool {
	switch topic {
	case TopicNotifications, TopicBanner, TopicChime:
		return true
	default:
		return false
	}
}

// Register and Unregister return immediately once Run has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Broadcast queues the event without blocking. It reports false when the
// queue is full and the event was dropped. A Coalesce event is never dropped
// that way; it replaces any older one still waiting for the same topic.
func (h *Hub) Broadcast(event Event) bool {
	if event.Coalesce {
		event.seq = h.seq.Add(1)
	}
	select {
	case h.broadcast <- event:
		return true
	default:
	}
	if !event.Coalesce {
		return false
	}
	h.pendingMu.Lock()
	h.pending[event.Topic] = event
	h.pendingMu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
	return true
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastToTopic(event)
		case <-h.wake:
			h.flushPending()
		}
	}
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[client.Topic] == nil {
		h.topics[client.Topic] = make(map[*Client]struct{})
	}
	h.topics[client.Topic][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	topic := h.topics[client.Topic]
	if topic == nil {
		return
	}
	delete(topic, client)
	if len(topic) == 0 {
		delete(h.topics, client.Topic)
	}
}

func (h *Hub) flushPending() {
	h.pendingMu.Lock()
	events := make([]Event, 0, len(h.pending))
	for topic, event := range h.pending {
		events = append(events, event)
		delete(h.pending, topic)
	}
	h.pendingMu.Unlock()
	for _, event := range events {
		h.broadcastToTopic(event)
	}
}

func (h *Hub) broadcastToTopic(event Event) {
	if event.Coalesce {
		// A newer state already went out; this one is stale.
		if event.seq < h.delivered[event.Topic] {
			return
		}
		h.delivered[event.Topic] = event.seq
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.topics[event.Topic] {
		select {
		case client.Ch <- event:
			continue
		default:
		}
		if !event.Coalesce {
			// Drop if the client is too slow.
			continue
		}
		// Make room by discarding the oldest frame. The hub is the only
		// sender, so the retry succeeds unless the reader took a frame first.
		select {
		case <-client.Ch:
		default:
		}
		select {
		case client.Ch <- event:
		default:
		}
	}
}
