package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/wricardo/mars-rover/rover/engine"
)

func newTestClient(hub *Hub, roverID int, buffer int) *Client {
	return &Client{
		hub:     hub,
		roverID: roverID,
		send:    make(chan []byte, buffer),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	if hub.rovers == nil {
		t.Error("Hub rovers map is nil")
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected broadcast buffer %d, got %d", broadcastBuffer, cap(hub.broadcast))
	}
	if hub.register == nil || hub.unregister == nil || hub.done == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	client1 := newTestClient(hub, 1, 1)
	client2 := newTestClient(hub, 1, 1)

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.rovers[1]) != 2 {
		t.Fatalf("Expected 2 clients for rover 1, got %d", len(hub.rovers[1]))
	}

	hub.unregisterClient(client1)
	if len(hub.rovers[1]) != 1 || !hub.rovers[1][client2] {
		t.Error("Expected client2 to remain registered")
	}
	if _, ok := <-client1.send; ok {
		t.Error("Unregistered client's send channel should be closed")
	}

	hub.unregisterClient(client2)
	if _, exists := hub.rovers[1]; exists {
		t.Error("Rover entry should be cleaned up after last client unregistered")
	}

	// Unregistering twice is a no-op
	hub.unregisterClient(client2)
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	watcher := newTestClient(hub, 1, 4)
	other := newTestClient(hub, 2, 4)
	hub.registerClient(watcher)
	hub.registerClient(other)

	rover := &engine.Rover{ID: 1, Name: "Curiosity", Position: engine.Position{X: 0, Y: 1}, Heading: engine.North}
	hub.broadcastMessage(&Message{RoverID: 1, Event: EventMoved, Rover: rover})

	select {
	case data := <-watcher.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if msg.Event != EventMoved || msg.RoverID != 1 {
			t.Errorf("Unexpected message: %+v", msg)
		}
		if msg.Rover == nil || msg.Rover.Position.Y != 1 {
			t.Errorf("Expected rover at (0,1), got %+v", msg.Rover)
		}
	default:
		t.Fatal("Watcher did not receive the broadcast")
	}

	select {
	case <-other.send:
		t.Error("Client watching another rover should not receive the broadcast")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	slow := newTestClient(hub, 1, 1)
	hub.registerClient(slow)

	msg := &Message{RoverID: 1, Event: EventMoved}
	hub.broadcastMessage(msg)
	hub.broadcastMessage(msg)

	if _, exists := hub.rovers[1]; exists {
		t.Error("Slow client should have been unregistered")
	}
}

func TestBroadcastRoverNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	rover := engine.NewRover(1, "Spirit")

	// No Run loop: the queue fills up and further updates are dropped
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.BroadcastRover(EventMoved, rover)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastRover blocked on a full queue")
	}

	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected %d queued messages, got %d", broadcastBuffer, len(hub.broadcast))
	}

	// Nil receivers are tolerated
	var nilHub *Hub
	nilHub.BroadcastRover(EventMoved, rover)
	hub.BroadcastRover(EventMoved, nil)
}

func TestHubEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	registered := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, 7)
		registered <- struct{}{}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("Client was never registered")
	}

	rover := engine.NewRover(7, "Zhurong")
	rover.Heading = engine.East
	hub.BroadcastRover(EventRenamed, rover)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if msg.RoverID != 7 || msg.Event != EventRenamed {
		t.Errorf("Unexpected message: %+v", msg)
	}
	if msg.Rover == nil || msg.Rover.Heading != engine.East {
		t.Errorf("Expected rover facing East, got %+v", msg.Rover)
	}

	// Stopping the hub closes subscriber connections
	cancel()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected connection to close after hub shutdown")
	}
}
