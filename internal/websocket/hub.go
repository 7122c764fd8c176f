package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FileEvent is pushed to the owner's connected clients when one of their
// files changes.
type FileEvent struct {
	Type     string `json:"type"`
	FileID   int64  `json:"fileId"`
	FileName string `json:"fileName"`
}

const (
	EventFileUploaded = "file_uploaded"
	EventFileDeleted  = "file_deleted"
)

// Hub fans file events out to the owner's websocket clients. Clients of
// one user never see another user's events.
type Hub struct {
	clients    map[int64]map[*Client]bool
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.Printf("ws client for user %d registered", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if userClients, ok := h.clients[client.UserID]; ok {
		if _, ok := userClients[client]; ok {
			delete(userClients, client)
			close(client.send)
			if len(userClients) == 0 {
				delete(h.clients, client.UserID)
			}
			log.Printf("ws client for user %d unregistered", client.UserID)
		}
	}
}

// PublishFileEvent delivers the event to every client of the owner.
// Slow clients are skipped rather than blocking the publisher.
func (h *Hub) PublishFileEvent(ownerID int64, event FileEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: failed to marshal file event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if userClients, ok := h.clients[ownerID]; ok {
		for client := range userClients {
			select {
			case client.send <- payload:
			default:
				log.Printf("WARN: client for user %d send buffer is full, dropping message", ownerID)
			}
		}
	}
}
