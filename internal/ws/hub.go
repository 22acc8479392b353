package ws

import (
	"sync"

	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/logger"
	"habitquest/internal/metrics"
)

// Hub fans committed group messages out to the sockets listening on each group.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.GroupID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.GroupID] = room
	}
	room[c] = struct{}{}
	metrics.WSConnections.Inc()
	logger.Debug("ws client joined", "group_id", c.GroupID, "user_id", c.UserID, "listeners", len(room))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops c and closes its send queue. Safe to call twice.
func (h *Hub) removeLocked(c *Client) {
	room, ok := h.rooms[c.GroupID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.Send)
	metrics.WSConnections.Dec()
	if len(room) == 0 {
		delete(h.rooms, c.GroupID)
	}
}

// Listeners reports how many sockets are open on groupID.
func (h *Hub) Listeners(groupID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[groupID])
}

// BroadcastGroupMessage queues m on every socket of its group. Clients whose
// queue is full are dropped.
func (h *Hub) BroadcastGroupMessage(m *domain.GroupMessage) {
	frame, err := encode(MsgMessage, m)
	if err != nil {
		logger.Error("ws encode message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[m.GroupID] {
		select {
		case c.Send <- frame:
		default:
			logger.Warn("ws client too slow, dropping", "group_id", m.GroupID, "user_id", c.UserID)
			h.removeLocked(c)
		}
	}
}
