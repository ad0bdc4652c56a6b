package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/wricardo/mcp-training/wordgrid/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins
		return true
	},
}

// Dispatcher consumes inbound actions and connection loss
type Dispatcher interface {
	Dispatch(participantID string, action service.Action) error
	Disconnect(participantID string)
}

// Client is one websocket connection, identified by a participant ID
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type commandKind int

const (
	cmdSend commandKind = iota
	cmdBroadcast
	cmdSubscribe
	cmdUnsubscribe
)

// command is one instruction for the hub loop. A single queue keeps a
// Subscribe ahead of the Broadcast that follows it.
type command struct {
	kind        commandKind
	participant string
	room        string
	data        []byte
}

// Hub maintains the active clients and the session rooms they subscribe
// to. It implements service.Delivery.
type Hub struct {
	// Connected clients by participant ID
	clients map[string]*Client

	// Participant IDs subscribed to each session
	rooms map[string]map[string]bool

	commands   chan command
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	dispatcher Dispatcher
	connected  atomic.Int64
	logger     zerolog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		commands:   make(chan command, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// SetDispatcher installs the consumer of inbound actions. Call it before
// serving connections.
func (h *Hub) SetDispatcher(d Dispatcher) {
	h.dispatcher = d
}

// Run starts the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case cmd := <-h.commands:
			h.apply(cmd)

		case <-h.done:
			for _, client := range h.clients {
				h.unregisterClient(client)
			}
			return
		}
	}
}

// Stop ends the event loop and closes every connection
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Connected returns the number of open connections
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// ServeWS upgrades the request and assigns the connection a fresh
// participant ID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// SendTo queues a notification for one participant
func (h *Hub) SendTo(participantID string, n service.Notification) {
	if data, ok := h.encode(n); ok {
		h.enqueue(command{kind: cmdSend, participant: participantID, data: data})
	}
}

// Broadcast queues a notification for every participant subscribed to the
// session
func (h *Hub) Broadcast(sessionID string, n service.Notification) {
	if data, ok := h.encode(n); ok {
		h.enqueue(command{kind: cmdBroadcast, room: sessionID, data: data})
	}
}

// Subscribe adds the participant to the session's audience
func (h *Hub) Subscribe(sessionID, participantID string) {
	h.enqueue(command{kind: cmdSubscribe, room: sessionID, participant: participantID})
}

// Unsubscribe removes the participant from the session's audience
func (h *Hub) Unsubscribe(sessionID, participantID string) {
	h.enqueue(command{kind: cmdUnsubscribe, room: sessionID, participant: participantID})
}

func (h *Hub) encode(n service.Notification) ([]byte, bool) {
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error().Err(err).Str("event", n.Event).Msg("failed to marshal notification")
		return nil, false
	}
	return data, true
}

func (h *Hub) enqueue(cmd command) {
	select {
	case h.commands <- cmd:
	case <-h.done:
	}
}

func (h *Hub) apply(cmd command) {
	switch cmd.kind {
	case cmdSend:
		if client, ok := h.clients[cmd.participant]; ok {
			h.deliver(client, cmd.data)
		}

	case cmdBroadcast:
		for pid := range h.rooms[cmd.room] {
			if client, ok := h.clients[pid]; ok {
				h.deliver(client, cmd.data)
			}
		}

	case cmdSubscribe:
		if h.rooms[cmd.room] == nil {
			h.rooms[cmd.room] = make(map[string]bool)
		}
		h.rooms[cmd.room][cmd.participant] = true

	case cmdUnsubscribe:
		h.leaveRoom(cmd.room, cmd.participant)
	}
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Client's send channel is full, close it
		h.logger.Warn().Str("participant", client.id).Msg("slow client dropped")
		h.unregisterClient(client)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client.id] = client
	h.connected.Store(int64(len(h.clients)))

	h.logger.Debug().Str("participant", client.id).Int("clients", len(h.clients)).Msg("client registered")
}

// unregisterClient drops the client and its subscriptions
func (h *Hub) unregisterClient(client *Client) {
	if current, ok := h.clients[client.id]; !ok || current != client {
		return
	}

	delete(h.clients, client.id)
	close(client.send)
	for room := range h.rooms {
		h.leaveRoom(room, client.id)
	}
	h.connected.Store(int64(len(h.clients)))

	h.logger.Debug().Str("participant", client.id).Int("clients", len(h.clients)).Msg("client unregistered")
}

func (h *Hub) leaveRoom(room, participantID string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, participantID)

	// Clean up empty rooms
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// readPump decodes actions from the connection and hands them to the
// dispatcher. The dispatcher learns about the disconnect before the hub
// forgets the client.
func (c *Client) readPump() {
	defer func() {
		if c.hub.dispatcher != nil {
			c.hub.dispatcher.Disconnect(c.id)
		}
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
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug().Err(err).Str("participant", c.id).Msg("websocket closed")
			}
			break
		}

		var action service.Action
		if err := json.Unmarshal(message, &action); err != nil || action.Event == "" {
			c.hub.SendTo(c.id, service.Notification{Event: service.EventError, Data: service.ErrorPayload{
				Message: "malformed message",
				Code:    service.CodeBadRequest,
			}})
			continue
		}

		if c.hub.dispatcher == nil {
			continue
		}
		if err := c.hub.dispatcher.Dispatch(c.id, action); err != nil {
			c.hub.logger.Debug().Err(err).Str("participant", c.id).Str("action", action.Event).Msg("action rejected")
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection. Each
// notification is its own text frame.
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
