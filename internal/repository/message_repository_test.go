package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/homehub/panel/internal/model"
)

func TestMessageRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "amy", model.GlobalRoleUser)
	room := createTestRoom(t, db, "lounge")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		msg := &model.Message{
			RoomID:    room.ID,
			UserID:    sql.NullInt64{Int64: user.ID, Valid: true},
			Sender:    "amy",
			Text:      text,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	messages, err := repo.ListByRoomID(ctx, room.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListByRoomID failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	if messages[0].Text != "first" || messages[2].Text != "third" {
		t.Errorf("Expected chronological order, got %s..%s", messages[0].Text, messages[2].Text)
	}
	if !messages[0].Handle.Valid || messages[0].Handle.String != "amy" {
		t.Errorf("Expected joined handle amy, got %+v", messages[0].Handle)
	}
}

func TestMessageRepository_TiedTimestampsOrderByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	room := createTestRoom(t, db, "tieroom")
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, text := range []string{"a", "b", "c"} {
		msg := &model.Message{RoomID: room.ID, Sender: "system", Text: text, Timestamp: ts}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	messages, err := repo.ListByRoomID(ctx, room.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListByRoomID failed: %v", err)
	}
	// Equal timestamps fall back to insertion order via id
	for i, want := range []string{"a", "b", "c"} {
		if messages[i].Text != want {
			t.Errorf("Expected %s at index %d, got %s", want, i, messages[i].Text)
		}
	}
}

func TestMessageRepository_SystemMessageNullAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	room := createTestRoom(t, db, "sysroom")

	msg := &model.Message{RoomID: room.ID, Sender: "system", Text: "room created"}
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	messages, err := repo.ListByRoomID(ctx, room.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListByRoomID failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].UserID.Valid {
		t.Error("Expected null author on system message")
	}
	if messages[0].Handle.Valid {
		t.Error("Expected no joined handle on system message")
	}
	if got := messages[0].GetSenderName(); got != "system" {
		t.Errorf("Expected sender system, got %s", got)
	}
}

func TestMessageRepository_AuthorDeletedMessageSurvives(t *testing.T) {
	db := setupTestDB(t)
	msgRepo := NewMessageRepository(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "ben", model.GlobalRoleUser)
	room := createTestRoom(t, db, "keeps")

	msg := &model.Message{
		RoomID: room.ID,
		UserID: sql.NullInt64{Int64: user.ID, Valid: true},
		Sender: "ben",
		Text:   "still here",
	}
	if err := msgRepo.Create(ctx, msg); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := userRepo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete user failed: %v", err)
	}

	messages, err := msgRepo.ListByRoomID(ctx, room.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListByRoomID failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected message to survive author deletion, got %d", len(messages))
	}
	if messages[0].UserID.Valid {
		t.Error("Expected author to be nulled after user deletion")
	}
	if messages[0].Sender != "ben" {
		t.Errorf("Expected sender snapshot ben, got %s", messages[0].Sender)
	}
}

func TestMessageRepository_BeforePagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	room := createTestRoom(t, db, "pages")

	var ids []int64
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		msg := &model.Message{
			RoomID:    room.ID,
			Sender:    "system",
			Text:      "msg",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, msg.ID)
	}

	messages, err := repo.ListByRoomID(ctx, room.ID, 50, ids[3])
	if err != nil {
		t.Fatalf("ListByRoomID failed: %v", err)
	}
	if len(messages) != 3 {
		t.Errorf("Expected 3 messages before id %d, got %d", ids[3], len(messages))
	}

	count, err := repo.CountByRoomID(ctx, room.ID)
	if err != nil {
		t.Fatalf("CountByRoomID failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 messages, got %d", count)
	}
}
