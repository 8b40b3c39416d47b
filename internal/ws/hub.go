package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/pkg/cache"
	"github.com/homehub/panel/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BroadcastMessage represents a frame to fan out to a room's subscribers
type BroadcastMessage struct {
	RoomID  int64
	Message *Message
	Sender  *Client // nil for system frames
}

// Hub maintains the set of active clients and fans out room traffic
type Hub struct {
	clients map[*Client]bool

	// Subscribers by room
	rooms map[int64]map[*Client]bool

	// Connections by user, supports multiple devices
	users map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex

	roomService    *service.RoomService
	messageService *service.MessageService
	userService    *service.UserService

	// Presence keys in Redis, optional
	presence *cache.Presence
	redis    *redis.Client

	logger *zap.Logger
}

// NewHub creates a new Hub
func NewHub(
	roomService *service.RoomService,
	messageService *service.MessageService,
	userService *service.UserService,
	redisClient *redis.Client,
	logger *zap.Logger,
) *Hub {
	var presence *cache.Presence
	if redisClient != nil {
		presence = cache.NewPresence(redisClient)
	}

	return &Hub{
		clients:        make(map[*Client]bool),
		rooms:          make(map[int64]map[*Client]bool),
		users:          make(map[int64]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan *BroadcastMessage, 256),
		roomService:    roomService,
		messageService: messageService,
		userService:    userService,
		presence:       presence,
		redis:          redisClient,
		logger:         logger,
	}
}

// Run starts the hub loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)
		}
	}
}

func (h *Hub) actorFor(client *Client) *service.Actor {
	return &service.Actor{
		UserID: client.userID,
		Role:   model.GlobalRole(client.role),
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.users[client.userID] == nil {
		h.users[client.userID] = make(map[*Client]bool)
	}
	h.users[client.userID][client] = true

	h.logger.Info("Client connected",
		zap.Int64("user_id", client.userID),
		zap.String("handle", client.handle),
		zap.Int("total_clients", len(h.clients)),
	)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.userService.SetStatus(ctx, client.userID, model.UserStatusOnline)
		if h.presence != nil {
			h.presence.Touch(ctx, client.userID)
		}
	}()

	go h.broadcastUserStatus(client, true)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}

	delete(h.clients, client)

	if userClients, ok := h.users[client.userID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.users, client.userID)
		}
	}

	for roomID := range client.rooms {
		if roomClients, ok := h.rooms[roomID]; ok {
			delete(roomClients, client)
			if len(roomClients) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	h.mu.Unlock()

	client.Close()

	h.logger.Info("Client disconnected",
		zap.Int64("user_id", client.userID),
		zap.String("handle", client.handle),
	)

	h.mu.RLock()
	hasOtherConnections := len(h.users[client.userID]) > 0
	h.mu.RUnlock()

	if !hasOtherConnections {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.userService.SetStatus(ctx, client.userID, model.UserStatusOffline)
			if h.presence != nil {
				h.presence.Clear(ctx, client.userID)
			}
		}()

		go h.broadcastUserStatus(client, false)
	}
}

// Subscribe attaches a client to a room's live stream. Visiting heals a
// missing membership the same way the REST surface does; a global admin
// without membership is refused because live frames are message reads.
func (h *Hub) Subscribe(client *Client, roomID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, member, err := h.roomService.GetRoom(ctx, roomID, h.actorFor(client))
	if err != nil {
		client.sendError(404, "room not found")
		return
	}

	if member == nil {
		client.sendError(403, "room membership required")
		return
	}

	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	h.mu.Unlock()

	client.subscribe(roomID)

	subscribedMsg, _ := NewMessage(MessageTypeSubscribed, &SubscribedPayload{
		RoomID:   room.ID,
		RoomSlug: room.Slug,
		RoomName: room.Name,
		Role:     string(member.Role),
	})
	client.SendMessage(subscribedMsg)

	h.logger.Debug("Client subscribed to room",
		zap.Int64("user_id", client.userID),
		zap.Int64("room_id", roomID),
	)
}

// Unsubscribe detaches a client from a room's live stream
func (h *Hub) Unsubscribe(client *Client, roomID int64) {
	h.mu.Lock()
	if roomClients, ok := h.rooms[roomID]; ok {
		delete(roomClients, client)
		if len(roomClients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	client.unsubscribe(roomID)

	leftMsg, _ := NewMessage(MessageTypeUnsubscribed, &UnsubscribedPayload{RoomID: roomID})
	client.SendMessage(leftMsg)
}

// Post stores a message through the service layer and fans it out. The
// assistant reply, when one was produced, rides the same broadcast path.
func (h *Hub) Post(client *Client, payload PostPayload, requestID string) {
	if !client.IsSubscribed(payload.RoomID) {
		client.sendError(403, "subscribe to the room first")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := h.messageService.Post(ctx, &service.PostMessageInput{
		RoomID: payload.RoomID,
		Actor:  h.actorFor(client),
		Text:   payload.Text,
	})
	if err != nil {
		client.sendError(500, "failed to post message")
		return
	}

	ackMsg, _ := NewMessage(MessageTypeAck, &AckPayload{
		RequestID: requestID,
		Success:   true,
		MessageID: result.Message.ID,
	})
	client.SendMessage(ackMsg)

	h.fanOutStored(payload.RoomID, result.Message, client.handle, client)

	if result.Reply != nil {
		h.fanOutStored(payload.RoomID, result.Reply, "Assistant", nil)
	}
}

func (h *Hub) fanOutStored(roomID int64, msg *model.Message, senderName string, sender *Client) {
	broadcastMsg, _ := NewMessage(MessageTypeNewMessage, &NewMessagePayload{
		ID:         msg.ID,
		RoomID:     msg.RoomID,
		UserID:     msg.GetUserID(),
		Sender:     msg.Sender,
		SenderName: senderName,
		Text:       msg.Text,
		Timestamp:  msg.Timestamp.Format(time.RFC3339),
	})

	h.broadcast <- &BroadcastMessage{
		RoomID:  roomID,
		Message: broadcastMsg,
		Sender:  sender,
	}

	h.publishToRedis(fmt.Sprintf("room:%d", roomID), broadcastMsg)
}

// BroadcastTyping fans out a typing indicator to the room
func (h *Hub) BroadcastTyping(client *Client, roomID int64, typing bool) {
	if !client.IsSubscribed(roomID) {
		return
	}

	msg, _ := NewMessage(MessageTypeUserTyping, &UserTypingPayload{
		RoomID: roomID,
		UserID: client.userID,
		Handle: client.handle,
		Typing: typing,
	})

	h.broadcast <- &BroadcastMessage{
		RoomID:  roomID,
		Message: msg,
		Sender:  client,
	}
}

func (h *Hub) broadcastToRoom(bm *BroadcastMessage) {
	h.mu.RLock()
	clients := h.rooms[bm.RoomID]
	h.mu.RUnlock()

	for client := range clients {
		if bm.Sender != nil && client == bm.Sender {
			continue
		}
		client.SendMessage(bm.Message)
	}
}

func (h *Hub) broadcastUserStatus(client *Client, online bool) {
	status := "offline"
	msgType := MessageTypeUserOffline
	if online {
		status = "online"
		msgType = MessageTypeUserOnline
	}

	msg, _ := NewMessage(msgType, &UserStatusPayload{
		UserID: client.userID,
		Handle: client.handle,
		Status: status,
	})

	for _, roomID := range client.subscribedRooms() {
		h.broadcast <- &BroadcastMessage{
			RoomID:  roomID,
			Message: msg,
			Sender:  nil,
		}
	}
}

func (h *Hub) publishToRedis(channel string, msg *Message) {
	if h.redis == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.redis.Publish(context.Background(), channel, data)
}

// GetOnlineUsers returns user IDs holding at least one connection
func (h *Hub) GetOnlineUsers() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userIDs := make([]int64, 0, len(h.users))
	for userID := range h.users {
		userIDs = append(userIDs, userID)
	}
	return userIDs
}

// IsUserOnline checks if a user holds at least one connection
func (h *Hub) IsUserOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// GetStats returns hub statistics
func (h *Hub) GetStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]int{
		"total_clients": len(h.clients),
		"online_users":  len(h.users),
		"active_rooms":  len(h.rooms),
	}
}
