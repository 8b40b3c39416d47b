package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/pkg/database"
	"github.com/homehub/panel/internal/repository"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type testEnv struct {
	db          *sqlx.DB
	roomRepo    *repository.RoomRepository
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
	inviteRepo  *repository.InviteRepository
	settingRepo *repository.SettingRepository
	deviceRepo  *repository.DeviceRepository
	rooms       *RoomService
	messages    *MessageService
	logger      *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	env := &testEnv{
		db:          db,
		roomRepo:    repository.NewRoomRepository(db),
		userRepo:    repository.NewUserRepository(db),
		messageRepo: repository.NewMessageRepository(db),
		inviteRepo:  repository.NewInviteRepository(db),
		settingRepo: repository.NewSettingRepository(db),
		deviceRepo:  repository.NewDeviceRepository(db),
		logger:      logger,
	}
	env.rooms = NewRoomService(env.roomRepo, env.userRepo, env.messageRepo, logger)
	env.messages = NewMessageService(env.roomRepo, env.messageRepo, env.userRepo, nil, logger)

	return env
}

func (e *testEnv) user(t *testing.T, handle string, role model.GlobalRole) *Actor {
	t.Helper()

	user := &model.User{
		Handle:       handle,
		Name:         handle,
		Email:        fmt.Sprintf("%s@hub.local", handle),
		PasswordHash: "x",
		Role:         role,
	}
	if err := e.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user %s: %v", handle, err)
	}

	return &Actor{UserID: user.ID, Role: role}
}

// room creates a bare room with no members, simulating drift from a direct
// database write.
func (e *testEnv) room(t *testing.T, slug string, system bool) *model.Room {
	t.Helper()

	room := &model.Room{
		Slug:      slug,
		Name:      slug,
		IsSystem:  system,
		AIEnabled: true,
	}
	if err := e.roomRepo.Create(context.Background(), room); err != nil {
		t.Fatalf("Failed to create test room %s: %v", slug, err)
	}

	return room
}

func (e *testEnv) join(t *testing.T, roomID int64, actor *Actor, role model.MemberRole) {
	t.Helper()

	member := &model.RoomMember{RoomID: roomID, UserID: actor.UserID, Role: role}
	if err := e.roomRepo.AddMember(context.Background(), member); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
}
