package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/codeduel/codeduel-backend/internal/battle"
	"github.com/codeduel/codeduel-backend/pkg/logger"
)

// Hub tracks every open WebSocket connection and feeds connect/disconnect
// transitions to the battle manager, which owns all session state.
type Hub struct {
	clients map[string]*Client // userID -> client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	manager  *battle.Manager
	upgrader websocket.Upgrader
}

func NewHub(manager *battle.Manager, allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		manager:    manager,
		upgrader:   newUpgrader(allowedOrigins),
	}
}

// Run processes registration events. Must be launched once, as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if old, exists := h.clients[client.userID]; exists {
		old.closeSend()
		logger.Info("Replaced existing WebSocket connection", "userId", client.userID)
	}
	h.clients[client.userID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.manager.HandleConnect(client.userID, client)

	logger.Info("WebSocket client registered",
		"userId", client.userID,
		"connId", client.connID,
		"totalClients", total)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	// Only drop the map entry if it still points at this connection; a
	// reconnect may have replaced it already.
	if current, exists := h.clients[client.userID]; exists && current.connID == client.connID {
		delete(h.clients, client.userID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	client.closeSend()
	h.manager.HandleDisconnect(client.userID, client.connID)

	logger.Info("WebSocket client unregistered",
		"userId", client.userID,
		"connId", client.connID,
		"totalClients", total)
}
