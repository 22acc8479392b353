package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"habitquest/internal/domain"
	"habitquest/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Poster stores a chat message; the hub hears about it once it commits.
type Poster interface {
	PostMessage(ctx context.Context, groupID, userID uuid.UUID, content string) (*domain.GroupMessage, error)
}

type Client struct {
	UserID  uuid.UUID
	GroupID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte

	hub    *Hub
	poster Poster
}

func NewClient(userID, groupID uuid.UUID, conn *websocket.Conn, hub *Hub, poster Poster) *Client {
	return &Client{
		UserID:  userID,
		GroupID: groupID,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		hub:     hub,
		poster:  poster,
	}
}

// Run registers the client and blocks until the socket closes.
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writePump()

	if frame, err := encode(MsgReady, nil); err == nil {
		c.trySend(frame)
	}
	c.readPump()
}

func (c *Client) trySend(frame []byte) {
	defer func() {
		// Send is closed when the hub already dropped us.
		_ = recover()
	}()
	select {
	case c.Send <- frame:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.fail(domain.BadRequest("malformed frame"))
		return
	}
	if env.Type != MsgSend {
		c.fail(domain.BadRequest("unknown frame type %q", env.Type))
		return
	}

	var p SendPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		c.fail(domain.BadRequest("malformed payload"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.poster.PostMessage(ctx, c.GroupID, c.UserID, p.Content); err != nil {
		c.fail(err)
	}
}

func (c *Client) fail(err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		logger.Error("ws post message", "user_id", c.UserID, "group_id", c.GroupID, "error", err)
		msg = "internal error"
	}
	if frame, encErr := encode(MsgError, ErrorPayload{Message: msg, Kind: string(kind)}); encErr == nil {
		c.trySend(frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
