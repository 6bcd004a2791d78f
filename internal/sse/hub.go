package sse

import (
	"encoding/json"
	"sync"

	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
)

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

// Hub fans change events out to connected SSE clients. Events are scoped to
// the owning user: a client only ever receives events for its own records.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *dto.ChangeEvent
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *dto.ChangeEvent, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(event)
			for _, client := range h.clients {
				if client.UserID == event.OwnerID {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) BroadcastInsert(collection string, record dto.Item) {
	h.broadcast <- &dto.ChangeEvent{
		Kind:       dto.ChangeInserted,
		Collection: collection,
		OwnerID:    record.UserID,
		Record:     &record,
	}
}

func (h *Hub) BroadcastUpdate(collection string, record dto.Item) {
	h.broadcast <- &dto.ChangeEvent{
		Kind:       dto.ChangeUpdated,
		Collection: collection,
		OwnerID:    record.UserID,
		Record:     &record,
	}
}

func (h *Hub) BroadcastDelete(collection string, ownerID, id uuid.UUID) {
	h.broadcast <- &dto.ChangeEvent{
		Kind:       dto.ChangeDeleted,
		Collection: collection,
		OwnerID:    ownerID,
		ID:         id,
	}
}
