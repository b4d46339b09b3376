package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/wricardo/mars-rover/rover/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts before BroadcastRover starts dropping.
	broadcastBuffer = 256
)

// Events carried in Message.Event
const (
	EventCreated = "created"
	EventRenamed = "renamed"
	EventMoved   = "moved"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	RoverID int           `json:"rover_id"`
	Event   string        `json:"event"`
	Rover   *engine.Rover `json:"rover,omitempty"`
}

// Client represents a WebSocket client watching a single rover
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	roverID int
}

// Hub maintains the set of active clients and broadcasts messages.
// Only the Run goroutine touches the rovers map.
type Hub struct {
	// Registered clients by rover ID
	rovers map[int]map[*Client]bool

	// Outbound rover updates
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	logger zerolog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rovers:     make(map[int]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "websocket").Logger(),
	}
}

// Run starts the hub's event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.rovers {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to roverID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roverID int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		roverID: roverID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastRover queues an event for every client watching rover.
// It never blocks; when the queue is full the update is dropped.
func (h *Hub) BroadcastRover(event string, rover *engine.Rover) {
	if h == nil || rover == nil {
		return
	}

	message := &Message{
		RoverID: rover.ID,
		Event:   event,
		Rover:   rover.Clone(),
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Int("rover_id", rover.ID).Str("event", event).Msg("broadcast queue full, dropping update")
	}
}

// registerClient adds a client to a rover's subscribers
func (h *Hub) registerClient(client *Client) {
	if h.rovers[client.roverID] == nil {
		h.rovers[client.roverID] = make(map[*Client]bool)
	}
	h.rovers[client.roverID][client] = true

	h.logger.Debug().
		Int("rover_id", client.roverID).
		Int("clients", len(h.rovers[client.roverID])).
		Msg("client registered")
}

// unregisterClient removes a client from a rover's subscribers
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.rovers[client.roverID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.rovers, client.roverID)
			}

			h.logger.Debug().
				Int("rover_id", client.roverID).
				Int("clients", len(clients)).
				Msg("client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients watching its rover
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal broadcast message")
		return
	}

	if clients, ok := h.rovers[message.RoverID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Slow client
				h.unregisterClient(client)
			}
		}
	}
}

// readPump keeps the connection alive and detects disconnects
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming messages are ignored
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Int("rover_id", c.roverID).Msg("websocket closed unexpectedly")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
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
