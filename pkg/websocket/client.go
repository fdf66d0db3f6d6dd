package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
)

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	ActorID    primitive.ObjectID
	Role       string
	rooms      map[string]bool
	pingPeriod time.Duration
	pongWait   time.Duration

	// closed guards against a double close of send when a client is dropped
	// from one room and later from another, or unregisters after being
	// dropped. Protected by the hub mutex.
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, actorID primitive.ObjectID, role string, pingPeriod, pongWait time.Duration) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		ActorID:    actorID,
		Role:       role,
		rooms:      make(map[string]bool),
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type clientCommand struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Room      string `json:"room,omitempty"`
}

// Clients may watch a request's live status or stop watching. Everything
// else from the socket is ignored; state changes go through the HTTP API.
func (c *Client) handleMessage(message []byte) {
	var cmd clientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		return
	}

	switch cmd.Type {
	case "watch_request":
		if requestID, err := primitive.ObjectIDFromHex(cmd.RequestID); err == nil {
			c.hub.JoinRequestRoom(c, requestID)
		}
	case "unwatch":
		if cmd.Room != "" {
			c.hub.LeaveRoom(c, cmd.Room)
		}
	}
}
