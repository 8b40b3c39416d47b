package service

import (
	"context"
	"errors"
	"testing"

	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
)

func TestUserService_SetRole(t *testing.T) {
	env := newTestEnv(t)
	users := NewUserService(env.userRepo, env.logger)
	ctx := context.Background()

	owner := env.user(t, "root", model.GlobalRoleOwner)
	admin := env.user(t, "mod", model.GlobalRoleAdmin)
	target := env.user(t, "kid", model.GlobalRoleUser)

	// Admin may shuffle non-owner roles
	updated, err := users.SetRole(ctx, admin, target.UserID, model.GlobalRoleChild)
	if err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	if updated.Role != model.GlobalRoleChild {
		t.Errorf("Expected child role, got %s", updated.Role)
	}

	// But only an owner may mint another owner
	if _, err := users.SetRole(ctx, admin, target.UserID, model.GlobalRoleOwner); err == nil {
		t.Error("Expected admin to be refused granting owner")
	}
	if _, err := users.SetRole(ctx, owner, target.UserID, model.GlobalRoleOwner); err != nil {
		t.Errorf("Expected owner to grant owner, got %v", err)
	}

	// With two owners the original may step down
	if _, err := users.SetRole(ctx, owner, owner.UserID, model.GlobalRoleAdmin); err != nil {
		t.Errorf("Expected demotion with co-owner, got %v", err)
	}
}

func TestUserService_LastGlobalOwnerProtected(t *testing.T) {
	env := newTestEnv(t)
	users := NewUserService(env.userRepo, env.logger)
	ctx := context.Background()

	owner := env.user(t, "solo", model.GlobalRoleOwner)

	_, err := users.SetRole(ctx, owner, owner.UserID, model.GlobalRoleUser)
	if !errors.Is(err, apperrors.ErrLastOwner) {
		t.Errorf("Expected ErrLastOwner, got %v", err)
	}
}

func TestUserService_SuspendRules(t *testing.T) {
	env := newTestEnv(t)
	users := NewUserService(env.userRepo, env.logger)
	ctx := context.Background()

	owner := env.user(t, "boss", model.GlobalRoleOwner)
	admin := env.user(t, "mgr", model.GlobalRoleAdmin)
	target := env.user(t, "troub", model.GlobalRoleUser)

	if err := users.Suspend(ctx, admin, target.UserID); err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	suspended, _ := env.userRepo.GetByID(ctx, target.UserID)
	if suspended.Status != model.UserStatusSuspended {
		t.Errorf("Expected suspended, got %s", suspended.Status)
	}

	// Admin cannot suspend the owner, nor themselves
	if err := users.Suspend(ctx, admin, owner.UserID); err == nil {
		t.Error("Expected admin to be refused suspending the owner")
	}
	if err := users.Suspend(ctx, admin, admin.UserID); err == nil {
		t.Error("Expected self-suspension to be refused")
	}

	if err := users.Unsuspend(ctx, admin, target.UserID); err != nil {
		t.Fatalf("Unsuspend failed: %v", err)
	}
	restored, _ := env.userRepo.GetByID(ctx, target.UserID)
	if restored.Status != model.UserStatusOffline {
		t.Errorf("Expected offline after unsuspend, got %s", restored.Status)
	}
}

func TestUserService_DeleteGuards(t *testing.T) {
	env := newTestEnv(t)
	users := NewUserService(env.userRepo, env.logger)
	ctx := context.Background()

	owner := env.user(t, "own", model.GlobalRoleOwner)
	plain := env.user(t, "pln", model.GlobalRoleUser)
	target := env.user(t, "gone", model.GlobalRoleUser)

	if err := users.Delete(ctx, plain, target.UserID); err == nil {
		t.Error("Expected non-admin to be refused deletion")
	}

	// The last owner cannot be deleted
	if err := users.Delete(ctx, owner, owner.UserID); err == nil {
		t.Error("Expected self-deletion to be refused")
	}

	if err := users.Delete(ctx, owner, target.UserID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := users.GetByID(ctx, target.UserID); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
