// Package events fans out checklist changes to the websocket connections of
// the owning account. Delivery is best effort.
package events

import (
	"encoding/json"
	"sync"

	"github.com/dom/tickify/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type delivery struct {
	accountID uuid.UUID
	data      []byte
}

type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, conns := range h.clients {
				for client := range conns {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			conns, ok := h.clients[client.accountID]
			if !ok {
				conns = make(map[*Client]bool)
				h.clients[client.accountID] = conns
			}
			conns[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case d := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[d.accountID] {
				select {
				case client.send <- d.data:
				default:
					h.logger.Warn("dropping slow websocket connection",
						zap.String("account_id", d.accountID.String()))
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	conns, ok := h.clients[client.accountID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.accountID)
	}
	client.Close()
}

// Stop closes every connection and blocks until Run has exited.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish sends a change to every connection of accountID.
func (h *Hub) Publish(accountID uuid.UUID, changeType ChangeType, item *domain.ChecklistItem) {
	data, err := json.Marshal(NewMessage(changeType, item))
	if err != nil {
		h.logger.Error("failed to marshal change", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- delivery{accountID: accountID, data: data}:
	case <-h.done:
	}
}

// ConnectionCount returns the number of open connections for accountID.
func (h *Hub) ConnectionCount(accountID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}
