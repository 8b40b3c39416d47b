package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/pkg/database"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB opens an in-memory SQLite database with the schema applied.
// Each test gets its own database; Cleanup closes it.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *sqlx.DB, handle string, role model.GlobalRole) *model.User {
	t.Helper()

	repo := NewUserRepository(db)
	user := &model.User{
		Handle:       handle,
		Name:         handle,
		Email:        fmt.Sprintf("%s@hub.local", handle),
		PasswordHash: "x",
		Role:         role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user %s: %v", handle, err)
	}

	return user
}

func createTestRoom(t *testing.T, db *sqlx.DB, slug string) *model.Room {
	t.Helper()

	repo := NewRoomRepository(db)
	room := &model.Room{
		Slug:      slug,
		Name:      slug,
		AIEnabled: true,
	}
	if err := repo.Create(context.Background(), room); err != nil {
		t.Fatalf("Failed to create test room %s: %v", slug, err)
	}

	return room
}

func addTestMember(t *testing.T, db *sqlx.DB, roomID, userID int64, role model.MemberRole) *model.RoomMember {
	t.Helper()

	repo := NewRoomRepository(db)
	member := &model.RoomMember{
		RoomID: roomID,
		UserID: userID,
		Role:   role,
	}
	if err := repo.AddMember(context.Background(), member); err != nil {
		t.Fatalf("Failed to add test member: %v", err)
	}

	return member
}
