package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/middleware"
	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/pkg/database"
	"github.com/homehub/panel/internal/pkg/utils"
	"github.com/homehub/panel/internal/repository"
	"github.com/homehub/panel/internal/service"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type roomHandlerEnv struct {
	router     *gin.Engine
	db         *sqlx.DB
	jwtManager *utils.JWTManager
}

func setupRoomHandlerTest(t *testing.T) *roomHandlerEnv {
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

	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	roomRepo := repository.NewRoomRepository(db)
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	jwtManager := utils.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour, "test")

	roomService := service.NewRoomService(roomRepo, userRepo, messageRepo, logger)
	messageService := service.NewMessageService(roomRepo, messageRepo, userRepo, nil, logger)
	roomHandler := NewRoomHandler(roomService)
	messageHandler := NewMessageHandler(messageService)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(jwtManager))
	{
		api.POST("/rooms", roomHandler.Create)
		api.GET("/rooms", roomHandler.List)
		api.GET("/rooms/:id", roomHandler.GetByID)
		api.PUT("/rooms/:id/settings", roomHandler.UpdateSettings)
		api.DELETE("/rooms/:id", roomHandler.Delete)
		api.GET("/rooms/:id/members", roomHandler.ListMembers)
		api.POST("/rooms/:id/members", roomHandler.AddMember)
		api.GET("/rooms/:id/messages", messageHandler.List)
		api.POST("/rooms/:id/messages", messageHandler.Post)
	}

	return &roomHandlerEnv{router: router, db: db, jwtManager: jwtManager}
}

// tokenFor creates a user row directly and mints a token for it.
func (e *roomHandlerEnv) tokenFor(t *testing.T, handle, role string) string {
	t.Helper()

	userRepo := repository.NewUserRepository(e.db)
	hash, _ := utils.HashPassword("Password123!")
	user := &model.User{
		Handle:       handle,
		Name:         handle,
		Email:        handle + "@hub.local",
		PasswordHash: hash,
		Role:         model.GlobalRole(role),
	}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", handle, err)
	}

	pair, err := e.jwtManager.GenerateTokenPair(user.ID, user.Handle, user.Role)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return pair.AccessToken
}

func (e *roomHandlerEnv) createRoom(t *testing.T, token, name string) int64 {
	t.Helper()

	w := doJSON(t, e.router, "POST", "/api/v1/rooms", token, map[string]interface{}{
		"name": name,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create room %s: status %d: %s", name, w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse create response: %v", err)
	}
	return resp.Data.ID
}

func TestRoomHandler_CreateMakesOwner(t *testing.T) {
	env := setupRoomHandlerTest(t)
	token := env.tokenFor(t, "alice", "user")

	w := doJSON(t, env.router, "POST", "/api/v1/rooms", token, map[string]interface{}{
		"name": "Kitchen",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Slug   string `json:"slug"`
			MyRole string `json:"my_role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data.Slug != "kitchen" {
		t.Errorf("Expected slug kitchen, got %s", resp.Data.Slug)
	}
	if resp.Data.MyRole != "owner" {
		t.Errorf("Expected creator to be room owner, got %s", resp.Data.MyRole)
	}
}

func TestRoomHandler_ListCreatesDefaultRoom(t *testing.T) {
	env := setupRoomHandlerTest(t)
	token := env.tokenFor(t, "alice", "user")

	w := doJSON(t, env.router, "GET", "/api/v1/rooms", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Rooms []struct {
				Slug     string `json:"slug"`
				IsSystem bool   `json:"is_system"`
			} `json:"rooms"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Data.Rooms) != 1 {
		t.Fatalf("Expected 1 room, got %d", len(resp.Data.Rooms))
	}
	if resp.Data.Rooms[0].Slug != "general" || !resp.Data.Rooms[0].IsSystem {
		t.Errorf("Expected system general room, got %+v", resp.Data.Rooms[0])
	}
}

func TestRoomHandler_DeleteSystemRoomRefused(t *testing.T) {
	env := setupRoomHandlerTest(t)
	token := env.tokenFor(t, "boss", "owner")

	// Listing creates the system room
	w := doJSON(t, env.router, "GET", "/api/v1/rooms", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("List failed: %d", w.Code)
	}

	var resp struct {
		Data struct {
			Rooms []struct {
				ID int64 `json:"id"`
			} `json:"rooms"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	w = doJSON(t, env.router, "DELETE", fmt.Sprintf("/api/v1/rooms/%d", resp.Data.Rooms[0].ID), token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for system room deletion, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRoomHandler_VisitHealsMembership(t *testing.T) {
	env := setupRoomHandlerTest(t)
	aliceToken := env.tokenFor(t, "alice", "user")
	bobToken := env.tokenFor(t, "bob", "user")

	roomID := env.createRoom(t, aliceToken, "Kitchen")

	// Bob visits a room he was never added to and gets absorbed as member
	w := doJSON(t, env.router, "GET", fmt.Sprintf("/api/v1/rooms/%d", roomID), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			MyRole string `json:"my_role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data.MyRole != "member" {
		t.Errorf("Expected visitor to be absorbed as member, got %q", resp.Data.MyRole)
	}
}

func TestRoomHandler_GlobalAdminNotAbsorbed(t *testing.T) {
	env := setupRoomHandlerTest(t)
	aliceToken := env.tokenFor(t, "alice", "user")
	adminToken := env.tokenFor(t, "root", "admin")

	roomID := env.createRoom(t, aliceToken, "Kitchen")

	w := doJSON(t, env.router, "GET", fmt.Sprintf("/api/v1/rooms/%d", roomID), adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			MyRole string `json:"my_role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data.MyRole != "" {
		t.Errorf("Expected global admin to stay without membership, got %q", resp.Data.MyRole)
	}
}

func TestMessageHandler_GlobalAdminCannotRead(t *testing.T) {
	env := setupRoomHandlerTest(t)
	aliceToken := env.tokenFor(t, "alice", "user")
	adminToken := env.tokenFor(t, "root", "admin")

	roomID := env.createRoom(t, aliceToken, "Kitchen")

	w := doJSON(t, env.router, "GET", fmt.Sprintf("/api/v1/rooms/%d/messages", roomID), adminToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for non-member admin reading messages, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMessageHandler_PostAndList(t *testing.T) {
	env := setupRoomHandlerTest(t)
	token := env.tokenFor(t, "alice", "user")

	roomID := env.createRoom(t, token, "Kitchen")

	w := doJSON(t, env.router, "POST", fmt.Sprintf("/api/v1/rooms/%d/messages", roomID), token, map[string]interface{}{
		"text": "hello there",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, env.router, "GET", fmt.Sprintf("/api/v1/rooms/%d/messages", roomID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Messages []struct {
				Text string `json:"text"`
			} `json:"messages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Data.Messages) != 1 || resp.Data.Messages[0].Text != "hello there" {
		t.Errorf("Unexpected messages: %+v", resp.Data.Messages)
	}
}

func TestRoomHandler_ListAsGlobalAdminShowsAllRooms(t *testing.T) {
	env := setupRoomHandlerTest(t)
	aliceToken := env.tokenFor(t, "alice", "user")
	adminToken := env.tokenFor(t, "root", "admin")

	env.createRoom(t, aliceToken, "Kitchen")

	// The admin belongs to no room but the listing still shows every room
	w := doJSON(t, env.router, "GET", "/api/v1/rooms", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Rooms []struct {
				Slug string `json:"slug"`
			} `json:"rooms"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	slugs := make(map[string]bool)
	for _, r := range resp.Data.Rooms {
		slugs[r.Slug] = true
	}
	if !slugs["general"] || !slugs["kitchen"] {
		t.Errorf("Expected general and kitchen in admin listing, got %v", resp.Data.Rooms)
	}

	// Listing must not have absorbed the admin into anything
	var memberships int
	err := env.db.Get(&memberships,
		"SELECT COUNT(*) FROM room_members rm JOIN users u ON u.id = rm.user_id WHERE u.handle = ?", "root")
	if err != nil {
		t.Fatalf("Failed to count memberships: %v", err)
	}
	if memberships != 0 {
		t.Errorf("Expected 0 memberships for global admin after listing, got %d", memberships)
	}
}
