package ws

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(MessageTypeSubscribed, &SubscribedPayload{
		RoomID:   7,
		RoomSlug: "general",
		RoomName: "General",
		Role:     "member",
	})
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	if msg.Type != MessageTypeSubscribed {
		t.Errorf("Expected type %s, got %s", MessageTypeSubscribed, msg.Type)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	var payload SubscribedPayload
	if err := msg.ParsePayload(&payload); err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if payload.RoomID != 7 || payload.RoomSlug != "general" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg, err := NewErrorMessage(403, "room membership required")
	if err != nil {
		t.Fatalf("NewErrorMessage failed: %v", err)
	}

	if msg.Type != MessageTypeError {
		t.Errorf("Expected error type, got %s", msg.Type)
	}

	var payload ErrorPayload
	if err := msg.ParsePayload(&payload); err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if payload.Code != 403 || payload.Message != "room membership required" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestParsePayload_Invalid(t *testing.T) {
	msg := &Message{
		Type:    MessageTypePost,
		Payload: []byte(`{"room_id": "not-a-number"}`),
	}

	var payload PostPayload
	if err := msg.ParsePayload(&payload); err == nil {
		t.Error("Expected parse error for mistyped payload")
	}
}
