package websocket

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stuckClient has an unbuffered send channel, so every fan-out overflows
// and the hub drops it.
func stuckClient(role string) *Client {
	return &Client{
		send:    make(chan []byte),
		ActorID: primitive.NewObjectID(),
		Role:    role,
		rooms:   make(map[string]bool),
	}
}

func liveClient(role string) *Client {
	return &Client{
		send:    make(chan []byte, 16),
		ActorID: primitive.NewObjectID(),
		Role:    role,
		rooms:   make(map[string]bool),
	}
}

func (h *Hub) addForTest(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[client] = true
	h.joinRoom(client, ActorRoom(client.Role, client.ActorID))
}

func TestSlowClientInTwoRoomsDroppedOnce(t *testing.T) {
	h := NewHub()
	client := stuckClient("driver")
	requestID := primitive.NewObjectID()

	h.addForTest(client)
	h.JoinRequestRoom(client, requestID)

	msg := Message{Type: "status_changed", Timestamp: 1}
	// The first fan-out drops the client; the second must not close its
	// send channel again or write to the closed channel.
	h.SendToRoom(ActorRoom(client.Role, client.ActorID), msg)
	h.SendToRoom(RequestRoom(requestID), msg)

	h.mutex.RLock()
	_, tracked := h.clients[client]
	_, actorRoomLeft := h.rooms[ActorRoom(client.Role, client.ActorID)]
	_, requestRoomLeft := h.rooms[RequestRoom(requestID)]
	h.mutex.RUnlock()

	if tracked {
		t.Error("dropped client should be removed from the hub")
	}
	if actorRoomLeft || requestRoomLeft {
		t.Error("dropped client's empty rooms should be cleaned up")
	}

	// A later disconnect from the read pump must be a no-op.
	h.unregisterClient(client)
}

func TestUnregisterAfterDropIsNoOp(t *testing.T) {
	h := NewHub()
	client := stuckClient("patient")

	h.addForTest(client)
	h.SendToRoom(ActorRoom(client.Role, client.ActorID), Message{Type: "connected"})

	h.unregisterClient(client)
	h.unregisterClient(client)
}

func TestFanOutSkipsOnlySlowClients(t *testing.T) {
	h := NewHub()
	requestID := primitive.NewObjectID()

	slow := stuckClient("patient")
	healthy := liveClient("hospital")
	h.addForTest(slow)
	h.addForTest(healthy)
	h.JoinRequestRoom(slow, requestID)
	h.JoinRequestRoom(healthy, requestID)

	h.SendToRoom(RequestRoom(requestID), Message{Type: "status_changed", Timestamp: 2})

	select {
	case <-healthy.send:
	default:
		t.Fatal("healthy client should still receive the fan-out")
	}

	h.mutex.RLock()
	_, slowTracked := h.clients[slow]
	_, healthyTracked := h.clients[healthy]
	h.mutex.RUnlock()

	if slowTracked {
		t.Error("slow client should be dropped")
	}
	if !healthyTracked {
		t.Error("healthy client should stay connected")
	}
}
