package service

import (
	"context"
	"errors"
	"testing"

	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
)

func TestRoomService_FirstVisitorClaimsEmptyRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice", model.GlobalRoleUser)
	room := env.room(t, "orphaned", false)

	_, member, err := env.rooms.GetRoom(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if member == nil || member.Role != model.MemberRoleOwner {
		t.Fatalf("Expected first visitor to claim ownership, got %+v", member)
	}

	// Healing is idempotent: a second visit neither duplicates nor promotes
	_, again, err := env.rooms.GetRoom(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if again.Role != model.MemberRoleOwner {
		t.Errorf("Expected role to stay owner, got %s", again.Role)
	}

	count, _ := env.roomRepo.CountMembers(ctx, room.ID)
	if count != 1 {
		t.Errorf("Expected 1 member after repeat visits, got %d", count)
	}
}

func TestRoomService_VisitorAbsorbedAsMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "bob", model.GlobalRoleUser)
	visitor := env.user(t, "carol", model.GlobalRoleUser)
	room := env.room(t, "populated", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)

	_, member, err := env.rooms.GetRoom(ctx, room.ID, visitor)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if member == nil || member.Role != model.MemberRoleMember {
		t.Fatalf("Expected visitor to be absorbed as member, got %+v", member)
	}
}

func TestRoomService_GlobalAdminNotAbsorbed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "dave", model.GlobalRoleUser)
	admin := env.user(t, "erin", model.GlobalRoleAdmin)
	room := env.room(t, "private", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)

	// Metadata is visible to the admin without joining
	_, member, err := env.rooms.GetRoom(ctx, room.ID, admin)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if member != nil {
		t.Errorf("Expected admin to stay a non-member, got %+v", member)
	}

	count, _ := env.roomRepo.CountMembers(ctx, room.ID)
	if count != 1 {
		t.Errorf("Expected member count to stay 1, got %d", count)
	}

	// But the roster stays closed to non-members, admin or not
	if _, err := env.rooms.ListMembers(ctx, room.ID, admin); err == nil {
		t.Error("Expected member list to be refused for non-member admin")
	}
}

func TestRoomService_GlobalAdminClaimsNothingOnEmptyRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.user(t, "frank", model.GlobalRoleAdmin)
	room := env.room(t, "empty", false)

	_, member, err := env.rooms.GetRoom(ctx, room.ID, admin)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if member != nil {
		t.Errorf("Expected no claimed membership for global admin, got %+v", member)
	}

	count, _ := env.roomRepo.CountMembers(ctx, room.ID)
	if count != 0 {
		t.Errorf("Expected room to stay empty, got %d members", count)
	}
}

func TestRoomService_StrangerRefusedWithoutGlobalRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A guest is not exempt from healing, so visiting joins them
	guest := env.user(t, "gina", model.GlobalRoleGuest)
	owner := env.user(t, "hank", model.GlobalRoleUser)
	room := env.room(t, "shared", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)

	_, member, err := env.rooms.GetRoom(ctx, room.ID, guest)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if member == nil || member.Role != model.MemberRoleMember {
		t.Errorf("Expected guest to be absorbed as member, got %+v", member)
	}
}

func TestRoomService_CreateAddsCreatorAsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "ivy", model.GlobalRoleUser)

	room, err := env.rooms.Create(ctx, &CreateRoomInput{
		Name:      "Movie Night",
		AIEnabled: true,
		Actor:     alice,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if room.Slug != "movie-night" {
		t.Errorf("Expected derived slug movie-night, got %s", room.Slug)
	}

	member, err := env.roomRepo.GetMember(ctx, room.ID, alice.UserID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if member.Role != model.MemberRoleOwner {
		t.Errorf("Expected creator to be owner, got %s", member.Role)
	}
}

func TestRoomService_DuplicateSlugRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "jack", model.GlobalRoleUser)
	env.room(t, "taken", false)

	_, err := env.rooms.Create(ctx, &CreateRoomInput{Name: "Taken", Slug: "taken", Actor: alice})
	if !errors.Is(err, apperrors.ErrSlugExists) {
		t.Errorf("Expected ErrSlugExists, got %v", err)
	}
}

func TestRoomService_LastOwnerCannotLeave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "kate", model.GlobalRoleUser)
	member := env.user(t, "liam", model.GlobalRoleUser)
	room := env.room(t, "guarded", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)
	env.join(t, room.ID, member, model.MemberRoleMember)

	// Self-removal is always authorized, but the store's owner guard holds
	err := env.rooms.RemoveMember(ctx, room.ID, owner, owner.UserID)
	if !errors.Is(err, apperrors.ErrLastOwner) {
		t.Errorf("Expected ErrLastOwner, got %v", err)
	}

	// A plain member can leave freely
	if err := env.rooms.RemoveMember(ctx, room.ID, member, member.UserID); err != nil {
		t.Errorf("Expected member to leave, got %v", err)
	}
}

func TestRoomService_MemberCannotRemoveOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "mona", model.GlobalRoleUser)
	a := env.user(t, "nate", model.GlobalRoleUser)
	b := env.user(t, "opal", model.GlobalRoleUser)
	room := env.room(t, "strict", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)
	env.join(t, room.ID, a, model.MemberRoleMember)
	env.join(t, room.ID, b, model.MemberRoleMember)

	if err := env.rooms.RemoveMember(ctx, room.ID, a, b.UserID); err == nil {
		t.Error("Expected plain member to be refused removing another member")
	}

	if err := env.rooms.RemoveMember(ctx, room.ID, owner, b.UserID); err != nil {
		t.Errorf("Expected owner to remove member, got %v", err)
	}
}

func TestRoomService_RoleUpdateGuardsLastOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "pam", model.GlobalRoleUser)
	member := env.user(t, "quin", model.GlobalRoleUser)
	room := env.room(t, "roles", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)
	env.join(t, room.ID, member, model.MemberRoleMember)

	// Owner demoting themselves while alone at the top is refused
	err := env.rooms.UpdateMemberRole(ctx, room.ID, owner, owner.UserID, model.MemberRoleMember)
	if !errors.Is(err, apperrors.ErrLastOwner) {
		t.Errorf("Expected ErrLastOwner, got %v", err)
	}

	// Promote a co-owner, then the demotion goes through
	if err := env.rooms.UpdateMemberRole(ctx, room.ID, owner, member.UserID, model.MemberRoleOwner); err != nil {
		t.Fatalf("UpdateMemberRole failed: %v", err)
	}
	if err := env.rooms.UpdateMemberRole(ctx, room.ID, owner, owner.UserID, model.MemberRoleMember); err != nil {
		t.Errorf("Expected demotion with co-owner, got %v", err)
	}
}

func TestRoomService_RoomAdminCannotChangeRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "rita", model.GlobalRoleUser)
	admin := env.user(t, "seth", model.GlobalRoleUser)
	member := env.user(t, "tess", model.GlobalRoleUser)
	room := env.room(t, "hier", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)
	env.join(t, room.ID, admin, model.MemberRoleAdmin)
	env.join(t, room.ID, member, model.MemberRoleMember)

	if err := env.rooms.UpdateMemberRole(ctx, room.ID, admin, member.UserID, model.MemberRoleAdmin); err == nil {
		t.Error("Expected room admin to be refused role changes")
	}
}

func TestRoomService_SystemRoomDeletionRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	globalOwner := env.user(t, "uma", model.GlobalRoleOwner)
	room := env.room(t, "sys", true)

	// The system-room refusal outranks even the global owner's delete right
	err := env.rooms.Delete(ctx, room.ID, globalOwner)
	if !errors.Is(err, apperrors.ErrSystemRoom) {
		t.Errorf("Expected ErrSystemRoom, got %v", err)
	}
}

func TestRoomService_DeleteByRoomOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "vera", model.GlobalRoleUser)
	admin := env.user(t, "walt", model.GlobalRoleUser)
	room := env.room(t, "temp", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)
	env.join(t, room.ID, admin, model.MemberRoleAdmin)

	// Room admin is not enough
	if err := env.rooms.Delete(ctx, room.ID, admin); err == nil {
		t.Error("Expected room admin to be refused deletion")
	}

	if err := env.rooms.Delete(ctx, room.ID, owner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := env.roomRepo.GetByID(ctx, room.ID); err == nil {
		t.Error("Expected room to be gone")
	}
}

func TestRoomService_DeleteByGlobalOwnerWithoutMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	globalOwner := env.user(t, "xena", model.GlobalRoleOwner)
	roomOwner := env.user(t, "yuri", model.GlobalRoleUser)
	room := env.room(t, "doomed", false)
	env.join(t, room.ID, roomOwner, model.MemberRoleOwner)

	if err := env.rooms.Delete(ctx, room.ID, globalOwner); err != nil {
		t.Fatalf("Expected global owner to delete without joining, got %v", err)
	}
}

func TestRoomService_GlobalAdminCannotDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.user(t, "zack", model.GlobalRoleAdmin)
	roomOwner := env.user(t, "abby", model.GlobalRoleUser)
	room := env.room(t, "safe", false)
	env.join(t, room.ID, roomOwner, model.MemberRoleOwner)

	if err := env.rooms.Delete(ctx, room.ID, admin); err == nil {
		t.Error("Expected global admin to be refused room deletion")
	}
}

func TestRoomService_UpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "beth", model.GlobalRoleUser)
	member := env.user(t, "cody", model.GlobalRoleUser)
	room := env.room(t, "knobs", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)
	env.join(t, room.ID, member, model.MemberRoleMember)

	off := false
	name := "Renamed"
	updated, err := env.rooms.UpdateSettings(ctx, &UpdateRoomInput{
		RoomID:    room.ID,
		Actor:     owner,
		Name:      &name,
		AIEnabled: &off,
	})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if updated.Name != "Renamed" || updated.AIEnabled {
		t.Errorf("Settings not applied: %+v", updated)
	}

	// Plain members cannot touch settings
	if _, err := env.rooms.UpdateSettings(ctx, &UpdateRoomInput{
		RoomID: room.ID, Actor: member, Name: &name,
	}); err == nil {
		t.Error("Expected plain member to be refused settings update")
	}
}

func TestRoomService_GlobalOwnerCannotUpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	globalOwner := env.user(t, "dina", model.GlobalRoleOwner)
	roomOwner := env.user(t, "evan", model.GlobalRoleUser)
	room := env.room(t, "odd", false)
	env.join(t, room.ID, roomOwner, model.MemberRoleOwner)

	name := "Nope"
	if _, err := env.rooms.UpdateSettings(ctx, &UpdateRoomInput{
		RoomID: room.ID, Actor: globalOwner, Name: &name,
	}); err == nil {
		t.Error("Expected non-member global owner to be refused settings update")
	}
}

func TestRoomService_ListForUserCreatesDefaultRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "fern", model.GlobalRoleUser)

	rooms, err := env.rooms.ListForUser(ctx, alice, 50, 0)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("Expected the default room, got %d rooms", len(rooms))
	}
	if rooms[0].Slug != DefaultRoomSlug || !rooms[0].IsSystem {
		t.Errorf("Expected system room %s, got %+v", DefaultRoomSlug, rooms[0].Room)
	}

	// First visitor owns it; a later visitor is just a member
	bob := env.user(t, "glen", model.GlobalRoleUser)
	if _, err := env.rooms.ListForUser(ctx, bob, 50, 0); err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	member, err := env.roomRepo.GetMember(ctx, rooms[0].ID, bob.UserID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if member.Role != model.MemberRoleMember {
		t.Errorf("Expected second visitor to be member, got %s", member.Role)
	}
}

func TestRoomService_ListAllDoesNotReconcile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "hope", model.GlobalRoleUser)
	room := env.room(t, "quiet", false)
	env.join(t, room.ID, owner, model.MemberRoleOwner)

	rooms, err := env.rooms.ListAll(ctx, 50, 0)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("Expected 1 room, got %d", len(rooms))
	}

	count, _ := env.roomRepo.CountMembers(ctx, room.ID)
	if count != 1 {
		t.Errorf("Expected management listing to leave membership alone, got %d", count)
	}
}
