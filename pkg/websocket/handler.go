package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Config tunes the upgrader and connection keepalive. Zero values fall back
// to sensible defaults.
type Config struct {
	ReadBufferSize    int
	WriteBufferSize   int
	PingInterval      time.Duration
	PongTimeout       time.Duration
	EnableCompression bool
	AllowedOrigins    []string
}

// ActorResolver extracts the authenticated actor from the request context.
// The HTTP auth middleware owns token validation; the hub only needs the
// result.
type ActorResolver func(c *gin.Context) (primitive.ObjectID, string, bool)

type Handler struct {
	hub      *Hub
	resolve  ActorResolver
	upgrader websocket.Upgrader
	cfg      Config
}

func NewHandler(cfg Config, resolve ActorResolver) *Handler {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 1024
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = 1024
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongTimeout {
		cfg.PingInterval = cfg.PongTimeout * 9 / 10
	}

	hub := NewHub()
	go hub.Run()

	return &Handler{
		hub:     hub,
		resolve: resolve,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    cfg.ReadBufferSize,
			WriteBufferSize:   cfg.WriteBufferSize,
			EnableCompression: cfg.EnableCompression,
			CheckOrigin:       originChecker(cfg.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, origin := range allowed {
		if origin == "*" {
			return func(r *http.Request) bool { return true }
		}
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	actorID, role, ok := h.resolve(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(h.hub, conn, actorID, role, h.cfg.PingInterval, h.cfg.PongTimeout)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// PublishToActor pushes an event to one actor's personal room.
func (h *Handler) PublishToActor(role string, actorID primitive.ObjectID, event string, payload interface{}) {
	h.hub.SendToRoom(ActorRoom(role, actorID), Message{
		Type:      event,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	})
}

// PublishRequestUpdate pushes a lifecycle event to everyone watching a
// request.
func (h *Handler) PublishRequestUpdate(requestID primitive.ObjectID, event string, payload interface{}) {
	h.hub.SendToRoom(RequestRoom(requestID), Message{
		Type:      event,
		Room:      RequestRoom(requestID),
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	})
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}
