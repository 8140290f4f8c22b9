package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/codeduel/codeduel-backend/internal/battle"
	"github.com/codeduel/codeduel-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; code buffers can be large
	maxMessageSize = 256 * 1024

	// Upper bound on one submission's evaluation, all cases included
	evaluateTimeout = 2 * time.Minute
)

// newUpgrader builds an upgrader that accepts only the configured origins.
// Requests without an Origin header (non-browser clients) are allowed.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origins[origin]
		},
	}
}

var errSendClosed = errors.New("send channel closed or full")

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outboundEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client is one player's WebSocket connection. It implements battle.Conn.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan outboundEnvelope
	userID string
	connID string

	closed   bool
	closedMu sync.Mutex
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan outboundEnvelope, 256),
		userID: userID,
		connID: uuid.New().String(),
	}
}

// ID implements battle.Conn.
func (c *Client) ID() string {
	return c.connID
}

// Send implements battle.Conn. It never blocks: a closed or saturated
// connection returns an error and the event is dropped.
func (c *Client) Send(event string, payload interface{}) error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return errSendClosed
	}
	select {
	case c.send <- outboundEnvelope{Type: event, Payload: payload}:
		return nil
	default:
		return errSendClosed
	}
}

func (c *Client) closeSend() {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// readPump reads inbound events and dispatches them to the battle manager.
// Events from one connection are processed in arrival order.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error", "userId", c.userID, "error", err)
			}
			break
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			logger.Warn("Malformed event", "userId", c.userID, "error", err)
			continue
		}

		c.dispatch(envelope)
	}
}

// dispatch routes one inbound event. The authenticated user id always wins
// over whatever the payload claims.
func (c *Client) dispatch(envelope Envelope) {
	manager := c.hub.manager

	switch envelope.Type {
	case battle.EventJoinQueue:
		var p battle.JoinQueuePayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			_ = c.Send(battle.EventQueueError, battle.ErrorPayload{Message: "malformed join-queue payload"})
			return
		}
		p.UserID = c.userID
		manager.JoinQueue(c, p)

	case battle.EventLeaveQueue:
		manager.LeaveQueue(c, c.userID)

	case battle.EventCodeUpdate:
		var p battle.CodeUpdatePayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return
		}
		manager.UpdateCode(c, p)

	case battle.EventSubmitSolution:
		var p battle.SubmitSolutionPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
		defer cancel()
		manager.SubmitSolution(ctx, c, p)

	default:
		logger.Debug("Unknown event type", "userId", c.userID, "type", envelope.Type)
	}
}

// writePump serializes outbound events onto the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(envelope)
			if err != nil {
				logger.Error("Failed to marshal event", "userId", c.userID, "error", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Error("Failed to write message", "userId", c.userID, "error", err)
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

// ServeWs upgrades the request and starts the client's pumps.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := newClient(hub, conn, userID)
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
