package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/homehub/panel/internal/model"
)

func TestRoomRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := &model.Room{Slug: "kitchen", Name: "Kitchen", AIEnabled: true}
	if err := repo.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if room.ID == 0 {
		t.Error("Expected room ID to be set")
	}

	got, err := repo.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Slug != "kitchen" {
		t.Errorf("Expected slug kitchen, got %s", got.Slug)
	}

	bySlug, err := repo.GetBySlug(ctx, "kitchen")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if bySlug.ID != room.ID {
		t.Errorf("Expected id %d, got %d", room.ID, bySlug.ID)
	}
}

func TestRoomRepository_DuplicateSlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	createTestRoom(t, db, "garage")

	err := repo.Create(ctx, &model.Room{Slug: "garage", Name: "Garage Again"})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("Expected ErrSlugTaken, got %v", err)
	}
}

func TestRoomRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)

	if _, err := repo.GetByID(context.Background(), 999); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomRepository_AddMemberAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", model.GlobalRoleUser)
	room := createTestRoom(t, db, "den")

	member := &model.RoomMember{RoomID: room.ID, UserID: user.ID, Role: model.MemberRoleAdmin}
	if err := repo.AddMember(ctx, member); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	got, err := repo.GetMember(ctx, room.ID, user.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got.Role != model.MemberRoleAdmin {
		t.Errorf("Expected role admin, got %s", got.Role)
	}
}

func TestRoomRepository_AddMember_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bob", model.GlobalRoleUser)
	room := createTestRoom(t, db, "attic")
	addTestMember(t, db, room.ID, user.ID, model.MemberRoleMember)

	err := repo.AddMember(ctx, &model.RoomMember{RoomID: room.ID, UserID: user.ID, Role: model.MemberRoleOwner})
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("Expected ErrAlreadyMember, got %v", err)
	}

	// The existing membership is untouched
	got, err := repo.GetMember(ctx, room.ID, user.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got.Role != model.MemberRoleMember {
		t.Errorf("Expected role member, got %s", got.Role)
	}
}

func TestRoomRepository_GetMember_NotMember(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)

	user := createTestUser(t, db, "carol", model.GlobalRoleUser)
	room := createTestRoom(t, db, "porch")

	if _, err := repo.GetMember(context.Background(), room.ID, user.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("Expected ErrNotMember, got %v", err)
	}
}

func TestRoomRepository_RemoveMember_LastOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "dave", model.GlobalRoleUser)
	other := createTestUser(t, db, "erin", model.GlobalRoleUser)
	room := createTestRoom(t, db, "study")
	addTestMember(t, db, room.ID, owner.ID, model.MemberRoleOwner)
	addTestMember(t, db, room.ID, other.ID, model.MemberRoleMember)

	// Removing the sole owner is rejected even though other members remain
	if err := repo.RemoveMember(ctx, room.ID, owner.ID); !errors.Is(err, ErrLastOwner) {
		t.Errorf("Expected ErrLastOwner, got %v", err)
	}

	// The membership survives the rejected removal
	if _, err := repo.GetMember(ctx, room.ID, owner.ID); err != nil {
		t.Errorf("Expected owner membership to remain, got %v", err)
	}

	// A plain member leaves without trouble
	if err := repo.RemoveMember(ctx, room.ID, other.ID); err != nil {
		t.Errorf("RemoveMember failed: %v", err)
	}
}

func TestRoomRepository_RemoveMember_OwnerWithCoOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	first := createTestUser(t, db, "frank", model.GlobalRoleUser)
	second := createTestUser(t, db, "grace", model.GlobalRoleUser)
	room := createTestRoom(t, db, "lab")
	addTestMember(t, db, room.ID, first.ID, model.MemberRoleOwner)
	addTestMember(t, db, room.ID, second.ID, model.MemberRoleOwner)

	if err := repo.RemoveMember(ctx, room.ID, first.ID); err != nil {
		t.Fatalf("Expected co-owner removal to succeed, got %v", err)
	}

	owners, err := repo.CountOwners(ctx, room.ID)
	if err != nil {
		t.Fatalf("CountOwners failed: %v", err)
	}
	if owners != 1 {
		t.Errorf("Expected 1 owner, got %d", owners)
	}
}

func TestRoomRepository_UpdateMemberRole_LastOwnerDemotion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "heidi", model.GlobalRoleUser)
	room := createTestRoom(t, db, "loft")
	addTestMember(t, db, room.ID, owner.ID, model.MemberRoleOwner)

	// Demoting the only owner would leave the room ownerless
	if err := repo.UpdateMemberRole(ctx, room.ID, owner.ID, model.MemberRoleMember); !errors.Is(err, ErrLastOwner) {
		t.Errorf("Expected ErrLastOwner, got %v", err)
	}

	got, err := repo.GetMember(ctx, room.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got.Role != model.MemberRoleOwner {
		t.Errorf("Expected role to remain owner, got %s", got.Role)
	}
}

func TestRoomRepository_UpdateMemberRole_Promote(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "ivan", model.GlobalRoleUser)
	member := createTestUser(t, db, "judy", model.GlobalRoleUser)
	room := createTestRoom(t, db, "shed")
	addTestMember(t, db, room.ID, owner.ID, model.MemberRoleOwner)
	addTestMember(t, db, room.ID, member.ID, model.MemberRoleMember)

	if err := repo.UpdateMemberRole(ctx, room.ID, member.ID, model.MemberRoleAdmin); err != nil {
		t.Fatalf("UpdateMemberRole failed: %v", err)
	}

	got, err := repo.GetMember(ctx, room.ID, member.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got.Role != model.MemberRoleAdmin {
		t.Errorf("Expected role admin, got %s", got.Role)
	}

	// With a second owner in place the original owner may step down
	if err := repo.UpdateMemberRole(ctx, room.ID, member.ID, model.MemberRoleOwner); err != nil {
		t.Fatalf("UpdateMemberRole failed: %v", err)
	}
	if err := repo.UpdateMemberRole(ctx, room.ID, owner.ID, model.MemberRoleMember); err != nil {
		t.Errorf("Expected demotion with co-owner to succeed, got %v", err)
	}
}

func TestRoomRepository_ListMembers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "kim", model.GlobalRoleAdmin)
	member := createTestUser(t, db, "leo", model.GlobalRoleUser)
	room := createTestRoom(t, db, "hall")
	addTestMember(t, db, room.ID, owner.ID, model.MemberRoleOwner)
	addTestMember(t, db, room.ID, member.ID, model.MemberRoleMember)

	members, err := repo.ListMembers(ctx, room.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(members))
	}

	byUser := map[int64]*model.RoomMemberWithUser{}
	for _, m := range members {
		byUser[m.UserID] = m
	}
	if byUser[owner.ID].GlobalRole != model.GlobalRoleAdmin {
		t.Errorf("Expected global role admin, got %s", byUser[owner.ID].GlobalRole)
	}
	if byUser[member.ID].Handle != "leo" {
		t.Errorf("Expected handle leo, got %s", byUser[member.ID].Handle)
	}
}

func TestRoomRepository_CountMembersAndOwners(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := createTestRoom(t, db, "yard")

	count, err := repo.CountMembers(ctx, room.ID)
	if err != nil {
		t.Fatalf("CountMembers failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 members, got %d", count)
	}

	u1 := createTestUser(t, db, "mia", model.GlobalRoleUser)
	u2 := createTestUser(t, db, "nick", model.GlobalRoleUser)
	addTestMember(t, db, room.ID, u1.ID, model.MemberRoleOwner)
	addTestMember(t, db, room.ID, u2.ID, model.MemberRoleMember)

	count, _ = repo.CountMembers(ctx, room.ID)
	if count != 2 {
		t.Errorf("Expected 2 members, got %d", count)
	}

	owners, _ := repo.CountOwners(ctx, room.ID)
	if owners != 1 {
		t.Errorf("Expected 1 owner, got %d", owners)
	}
}

func TestRoomRepository_DeleteCascadesMemberships(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "olga", model.GlobalRoleUser)
	room := createTestRoom(t, db, "cellar")
	addTestMember(t, db, room.ID, user.ID, model.MemberRoleOwner)

	if err := repo.Delete(ctx, room.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.GetMember(ctx, room.ID, user.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("Expected membership to cascade away, got %v", err)
	}
}

func TestRoomRepository_ListByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "pete", model.GlobalRoleUser)
	mine := createTestRoom(t, db, "mine")
	createTestRoom(t, db, "theirs")
	addTestMember(t, db, mine.ID, user.ID, model.MemberRoleMember)

	rooms, err := repo.ListByUserID(ctx, user.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListByUserID failed: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("Expected 1 room, got %d", len(rooms))
	}
	if rooms[0].Slug != "mine" {
		t.Errorf("Expected slug mine, got %s", rooms[0].Slug)
	}
	if rooms[0].MemberCount != 1 {
		t.Errorf("Expected member count 1, got %d", rooms[0].MemberCount)
	}
}
