package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/docsync/server/internal/models"
)

// SyncEvent is broadcast to connected clients whenever a link changes status
type SyncEvent struct {
	Type         string            `json:"type"`
	LinkID       string            `json:"linkId"`
	StoreID      string            `json:"storeId"`
	Status       models.SyncStatus `json:"status"`
	Version      int               `json:"version"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// EventClient represents one connected WebSocket client
type EventClient struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	hub        *SyncEventHub
	closedOnce sync.Once
}

// SyncEventHub fans link status transitions out to WebSocket clients
type SyncEventHub struct {
	clients    map[*EventClient]bool
	register   chan *EventClient
	unregister chan *EventClient
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
}

// NewSyncEventHub creates a new SyncEventHub
func NewSyncEventHub() *SyncEventHub {
	return &SyncEventHub{
		clients:    make(map[*EventClient]bool),
		register:   make(chan *EventClient),
		unregister: make(chan *EventClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop; call in a goroutine
func (h *SyncEventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("Sync event client connected: %s", client.ID)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			log.Printf("Sync event client disconnected: %s", client.ID)

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Client buffer full, drop the connection
					delete(h.clients, client)
					close(client.Send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			return
		}
	}
}

// Stop shuts the hub down and disconnects all clients
func (h *SyncEventHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Register adds a client to the hub. Once the hub has stopped the
// registration is refused and the client's send channel is closed so its
// write pump exits instead of waiting on a loop that has returned.
func (h *SyncEventHub) Register(client *EventClient) {
	client.hub = h
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the hub
func (h *SyncEventHub) Unregister(client *EventClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastLinkStatus publishes a link's current state to all clients.
// Never blocks the caller: if the hub's buffer is full the event is dropped.
func (h *SyncEventHub) BroadcastLinkStatus(link *models.SyncLink) {
	event := SyncEvent{
		Type:         "link_status",
		LinkID:       link.ID,
		StoreID:      link.StoreID,
		Status:       link.Status,
		Version:      link.Version,
		ErrorMessage: link.ErrorMessage,
		Timestamp:    time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- data:
	default:
	}
}

// WritePump pumps messages from the hub to the client's connection
func (c *EventClient) WritePump() {
	defer c.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// ReadPump drains the connection so close frames are processed
func (c *EventClient) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close closes the underlying connection once
func (c *EventClient) Close() {
	c.closedOnce.Do(func() {
		c.Conn.Close()
	})
}
