package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub tracks connected dashboard clients and routes events to them. Rooms
// are keyed by actor ("<role>:<id>") or by emergency request
// ("request:<id>") for live status watching.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
}

type Message struct {
	Type      string      `json:"type"`
	Room      string      `json:"room,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.routeMessage(message)
		}
	}
}

func ActorRoom(role string, actorID primitive.ObjectID) string {
	return role + ":" + actorID.Hex()
}

func RequestRoom(requestID primitive.ObjectID) string {
	return "request:" + requestID.Hex()
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true

	// Every client joins their personal room so targeted events reach them.
	h.joinRoom(client, ActorRoom(client.Role, client.ActorID))

	h.sendToClientLocked(client, Message{
		Type:      "connected",
		Timestamp: time.Now().Unix(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.closeClientLocked(client)
}

// closeClientLocked drops the client from the hub and every room it joined,
// closing its send channel exactly once. A slow client sitting in several
// rooms can be dropped more than once during a single fan-out, and a send
// on its closed channel would panic, so membership has to go with the close.
func (h *Hub) closeClientLocked(client *Client) {
	if client.closed {
		return
	}
	client.closed = true
	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
		delete(client.rooms, roomID)
	}
}

func (h *Hub) routeMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	if msg.Room != "" {
		h.SendToRoom(msg.Room, msg)
	}
}

// SendToRoom delivers a message to every client in the room. Clients with a
// full send buffer are dropped rather than blocking the hub.
func (h *Hub) SendToRoom(roomID string, message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	for client := range room {
		select {
		case client.send <- data:
		default:
			h.closeClientLocked(client)
		}
	}
}

func (h *Hub) sendToClientLocked(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.closeClientLocked(client)
	}
}

func (h *Hub) JoinRequestRoom(client *Client, requestID primitive.ObjectID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.joinRoom(client, RequestRoom(requestID))
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		delete(client.rooms, roomID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}
