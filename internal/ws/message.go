package ws

import (
	"encoding/json"
	"time"
)

// MessageType represents the type of WebSocket frame
type MessageType string

const (
	// Client -> Server
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypePost        MessageType = "post"
	MessageTypeTyping      MessageType = "typing"
	MessageTypeStopTyping  MessageType = "stop_typing"
	MessageTypePing        MessageType = "ping"

	// Server -> Client
	MessageTypeSubscribed   MessageType = "subscribed"
	MessageTypeUnsubscribed MessageType = "unsubscribed"
	MessageTypeNewMessage   MessageType = "new_message"
	MessageTypeUserTyping   MessageType = "user_typing"
	MessageTypeUserOnline   MessageType = "user_online"
	MessageTypeUserOffline  MessageType = "user_offline"
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
	MessageTypeAck          MessageType = "ack"
)

// Message represents a WebSocket frame
type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// SubscribePayload selects a room to receive live messages from
type SubscribePayload struct {
	RoomID int64 `json:"room_id"`
}

// PostPayload posts a message into a subscribed room
type PostPayload struct {
	RoomID int64  `json:"room_id"`
	Text   string `json:"text"`
}

// TypingPayload carries a typing indicator
type TypingPayload struct {
	RoomID int64 `json:"room_id"`
}

// SubscribedPayload confirms a room subscription
type SubscribedPayload struct {
	RoomID   int64  `json:"room_id"`
	RoomSlug string `json:"room_slug"`
	RoomName string `json:"room_name"`
	Role     string `json:"role"`
}

// UnsubscribedPayload confirms leaving a room stream
type UnsubscribedPayload struct {
	RoomID int64 `json:"room_id"`
}

// NewMessagePayload broadcasts a stored message
type NewMessagePayload struct {
	ID         int64  `json:"id"`
	RoomID     int64  `json:"room_id"`
	UserID     int64  `json:"user_id,omitempty"`
	Sender     string `json:"sender"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

// UserTypingPayload broadcasts a typing indicator
type UserTypingPayload struct {
	RoomID int64  `json:"room_id"`
	UserID int64  `json:"user_id"`
	Handle string `json:"handle"`
	Typing bool   `json:"typing"`
}

// UserStatusPayload broadcasts presence changes
type UserStatusPayload struct {
	UserID int64  `json:"user_id"`
	Handle string `json:"handle"`
	Status string `json:"status"`
}

// ErrorPayload carries an error frame
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AckPayload acknowledges a client request
type AckPayload struct {
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	MessageID int64  `json:"message_id,omitempty"`
}

// NewMessage creates a new frame
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now(),
	}, nil
}

// NewErrorMessage creates a new error frame
func NewErrorMessage(code int, message string) (*Message, error) {
	return NewMessage(MessageTypeError, &ErrorPayload{
		Code:    code,
		Message: message,
	})
}

// ParsePayload parses the frame payload into the given type
func (m *Message) ParsePayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}
