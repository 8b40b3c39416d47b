package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/homehub/panel/internal/config"
	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/pkg/database"
	"github.com/homehub/panel/internal/pkg/utils"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

func main() {
	log.Println("Starting database seed...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := zap.NewNop()
	db, err := database.NewSQLite(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Seed users. The first one is the hub owner.
	log.Println("Creating users...")
	users := []struct {
		handle string
		name   string
		role   model.GlobalRole
	}{
		{"mom", "Mom", model.GlobalRoleOwner},
		{"dad", "Dad", model.GlobalRoleAdmin},
		{"kid", "Kiddo", model.GlobalRoleChild},
		{"grandma", "Grandma", model.GlobalRoleUser},
	}

	var createdUsers []*model.User
	for _, u := range users {
		hash, _ := utils.HashPassword("password123")
		user := &model.User{
			Handle:       u.handle,
			Name:         u.name,
			Email:        u.handle + "@hub.local",
			PasswordHash: hash,
			Role:         u.role,
		}

		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("User %s might already exist: %v", u.handle, err)
			existing, _ := userRepo.GetByHandle(ctx, u.handle)
			if existing != nil {
				createdUsers = append(createdUsers, existing)
			}
		} else {
			createdUsers = append(createdUsers, user)
			log.Printf("Created user: %s (%s)", u.handle, u.role)
		}
	}

	if len(createdUsers) < 2 {
		log.Println("Not enough users, skipping room and message creation")
		return
	}

	// Seed rooms. General is the system room every user is absorbed into.
	log.Println("Creating rooms...")
	rooms := []struct {
		slug       string
		name       string
		isSystem   bool
		aiEnabled  bool
		ownerIndex int
	}{
		{"general", "General", true, true, 0},
		{"kitchen", "Kitchen", false, true, 0},
		{"movie-night", "Movie Night", false, false, 1},
	}

	var createdRooms []*model.Room
	for _, r := range rooms {
		room := &model.Room{
			Slug:                 r.slug,
			Name:                 r.name,
			IsSystem:             r.isSystem,
			AIEnabled:            r.aiEnabled,
			NotificationsEnabled: true,
		}

		if err := roomRepo.Create(ctx, room); err != nil {
			log.Printf("Room %s might already exist: %v", r.slug, err)
			existing, _ := roomRepo.GetBySlug(ctx, r.slug)
			if existing != nil {
				createdRooms = append(createdRooms, existing)
			}
			continue
		}

		createdRooms = append(createdRooms, room)
		log.Printf("Created room: %s", r.slug)

		owner := &model.RoomMember{
			RoomID: room.ID,
			UserID: createdUsers[r.ownerIndex].ID,
			Role:   model.MemberRoleOwner,
		}
		_ = roomRepo.AddMember(ctx, owner)
	}

	// Everyone joins the general room; regular users join the rest as members
	log.Println("Adding members to rooms...")
	for _, room := range createdRooms {
		for _, user := range createdUsers {
			member := &model.RoomMember{
				RoomID: room.ID,
				UserID: user.ID,
				Role:   model.MemberRoleMember,
			}
			if err := roomRepo.AddMember(ctx, member); err == nil {
				log.Printf("Added %s to room %s", user.Handle, room.Slug)
			}
		}
	}

	// Seed a few messages
	log.Println("Creating messages...")
	messages := []struct {
		roomIndex int
		userIndex int
		text      string
	}{
		{0, 0, "Welcome to the hub!"},
		{0, 1, "Hello everyone"},
		{0, 2, "hi hi hi"},
		{1, 0, "We are out of milk again"},
		{1, 1, "I'll grab some on the way home"},
		{2, 1, "Movie night on Friday?"},
	}

	for _, m := range messages {
		if m.roomIndex >= len(createdRooms) || m.userIndex >= len(createdUsers) {
			continue
		}

		author := createdUsers[m.userIndex]
		msg := &model.Message{
			RoomID: createdRooms[m.roomIndex].ID,
			UserID: sql.NullInt64{Int64: author.ID, Valid: true},
			Sender: author.Handle,
			Text:   m.text,
		}

		if err := messageRepo.Create(ctx, msg); err != nil {
			log.Printf("Failed to create message: %v", err)
		}

		// Keep timestamps distinct
		time.Sleep(10 * time.Millisecond)
	}

	// Hub defaults
	_ = settingRepo.Set(ctx, "allow_registration", "false")
	_ = settingRepo.Set(ctx, "ai_rate_limit", "30")

	log.Println("Seed completed successfully!")
	fmt.Println("\n--- Test Accounts ---")
	fmt.Println("All accounts have password: password123")
	for _, u := range users {
		fmt.Printf("Handle: %s, Role: %s\n", u.handle, u.role)
	}
}
