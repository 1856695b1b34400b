package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"allumino/internal/pkg/logger"
	"allumino/internal/repository"
)

// Hub fans activity events out to connected websocket clients. It implements
// usecase.ActivityPublisher, so every appended activity entry reaches the
// admin feed without the usecases knowing about websockets.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *logger.Logger
}

type activityEvent struct {
	Type      string                 `json:"type"`
	Entry     repository.ActivityLog `json:"entry"`
	Timestamp string                 `json:"timestamp"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		log:        log,
	}
}

// Run owns the client set. Call it once from a goroutine; it returns when ctx
// is cancelled, closing every client send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("ws client connected", "total_clients", total)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("ws client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mu.RLock()
			snapshot := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				snapshot = append(snapshot, c)
			}
			h.mu.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it rather than stall the feed.
					h.Unregister(client)
				}
			}
		}
	}
}

// PublishActivity satisfies usecase.ActivityPublisher. Never blocks: a full
// broadcast buffer drops the event.
func (h *Hub) PublishActivity(entry repository.ActivityLog) {
	if h == nil {
		return
	}

	b, err := json.Marshal(activityEvent{
		Type:      "activity",
		Entry:     entry,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- b:
	default:
		h.log.Warn("ws broadcast dropped", "reason", "buffer_full")
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	default:
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
