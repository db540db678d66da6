package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/docsync/server/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler streams link status transitions over WebSocket
type EventsHandler struct {
	hub *services.SyncEventHub
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(hub *services.SyncEventHub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// HandleConnection upgrades HTTP to WebSocket and manages the connection
func (h *EventsHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &services.EventClient{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 64),
	}

	h.hub.Register(client)

	go client.WritePump()

	// Blocks until the connection closes
	client.ReadPump()
}
