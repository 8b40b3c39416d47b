package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Send buffer size
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
	handle string
	role   string
	rooms  map[int64]bool
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewClient creates a new client
func NewClient(hub *Hub, conn *websocket.Conn, userID int64, handle, role string, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
		handle: handle,
		role:   role,
		rooms:  make(map[int64]bool),
		logger: logger,
	}
}

// GetUserID returns client's user ID
func (c *Client) GetUserID() int64 {
	return c.userID
}

// IsSubscribed checks if the client receives a room's stream
func (c *Client) IsSubscribed(roomID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms[roomID]
}

func (c *Client) subscribe(roomID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = true
}

func (c *Client) unsubscribe(roomID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

func (c *Client) subscribedRooms() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]int64, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
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
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error",
					zap.Int64("user_id", c.userID),
					zap.Error(err),
				)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("Failed to parse frame",
				zap.Int64("user_id", c.userID),
				zap.Error(err),
			)
			c.sendError(400, "invalid frame format")
			continue
		}

		c.handleMessage(&msg)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
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
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeSubscribe:
		var payload SubscribePayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.sendError(400, "invalid payload")
			return
		}
		c.hub.Subscribe(c, payload.RoomID)

	case MessageTypeUnsubscribe:
		var payload SubscribePayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.sendError(400, "invalid payload")
			return
		}
		c.hub.Unsubscribe(c, payload.RoomID)

	case MessageTypePost:
		var payload PostPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.sendError(400, "invalid payload")
			return
		}
		c.hub.Post(c, payload, msg.RequestID)

	case MessageTypeTyping:
		var payload TypingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.hub.BroadcastTyping(c, payload.RoomID, true)

	case MessageTypeStopTyping:
		var payload TypingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.hub.BroadcastTyping(c, payload.RoomID, false)

	case MessageTypePing:
		pongMsg, _ := NewMessage(MessageTypePong, nil)
		c.SendMessage(pongMsg)

	default:
		c.sendError(400, "unknown frame type")
	}
}

// SendMessage queues a frame for the client
func (c *Client) SendMessage(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to marshal frame",
			zap.Int64("user_id", c.userID),
			zap.Error(err),
		)
		return
	}

	select {
	case c.send <- data:
	default:
		// Channel is full, client is slow
		c.logger.Warn("Client send buffer full",
			zap.Int64("user_id", c.userID),
		)
	}
}

func (c *Client) sendError(code int, message string) {
	errMsg, _ := NewErrorMessage(code, message)
	c.SendMessage(errMsg)
}

// Close closes the client's send channel
func (c *Client) Close() {
	close(c.send)
}
