package response

import (
	"time"

	"github.com/homehub/panel/internal/model"
)

// MessageResponse represents a message response
type MessageResponse struct {
	ID        int64  `json:"id"`
	RoomID    int64  `json:"room_id"`
	UserID    int64  `json:"user_id,omitempty"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewMessageResponse creates a message response from model
func NewMessageResponse(m *model.Message) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    m.GetUserID(),
		Sender:    m.Sender,
		Text:      m.Text,
		Timestamp: m.Timestamp.Format(time.RFC3339),
	}
}

// MessageWithUserResponse includes author display info
type MessageWithUserResponse struct {
	MessageResponse
	SenderName string `json:"sender_name"`
}

// NewMessageWithUserResponse creates a message response with author info
func NewMessageWithUserResponse(m *model.MessageWithUser) *MessageWithUserResponse {
	return &MessageWithUserResponse{
		MessageResponse: *NewMessageResponse(&m.Message),
		SenderName:      m.GetSenderName(),
	}
}

// MessageListResponse represents a list of messages
type MessageListResponse struct {
	Messages []*MessageWithUserResponse `json:"messages"`
	Total    int                        `json:"total"`
}

// NewMessageListResponse creates a message list response
func NewMessageListResponse(messages []*model.MessageWithUser) *MessageListResponse {
	items := make([]*MessageWithUserResponse, len(messages))
	for i, m := range messages {
		items[i] = NewMessageWithUserResponse(m)
	}
	return &MessageListResponse{
		Messages: items,
		Total:    len(items),
	}
}

// PostMessageResponse carries the posted message and any assistant reply
type PostMessageResponse struct {
	Message *MessageResponse `json:"message"`
	Reply   *MessageResponse `json:"reply,omitempty"`
}
