package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/homehub/panel/internal/model"
)

var inviteCodePattern = regexp.MustCompile(`^INV-[A-Z2-9]{4}$`)

func TestInviteService_CreateFormat(t *testing.T) {
	env := newTestEnv(t)
	invites := NewInviteService(env.inviteRepo, env.logger)
	ctx := context.Background()

	admin := env.user(t, "adm", model.GlobalRoleAdmin)

	invite, err := invites.Create(ctx, admin, 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !inviteCodePattern.MatchString(invite.Code) {
		t.Errorf("Expected INV-XXXX code, got %s", invite.Code)
	}
	if invite.MaxUses != 5 {
		t.Errorf("Expected default max uses 5, got %d", invite.MaxUses)
	}
	if !invite.CreatedBy.Valid || invite.CreatedBy.Int64 != admin.UserID {
		t.Errorf("Expected creator to be recorded, got %+v", invite.CreatedBy)
	}
}

func TestInviteService_NonAdminRefused(t *testing.T) {
	env := newTestEnv(t)
	invites := NewInviteService(env.inviteRepo, env.logger)
	ctx := context.Background()

	plain := env.user(t, "usr", model.GlobalRoleUser)

	if _, err := invites.Create(ctx, plain, 5); err == nil {
		t.Error("Expected non-admin to be refused invite creation")
	}
	if _, err := invites.List(ctx, plain); err == nil {
		t.Error("Expected non-admin to be refused invite listing")
	}
}

func TestInviteService_RevokeAndList(t *testing.T) {
	env := newTestEnv(t)
	invites := NewInviteService(env.inviteRepo, env.logger)
	ctx := context.Background()

	admin := env.user(t, "adm2", model.GlobalRoleAdmin)

	invite, err := invites.Create(ctx, admin, 3)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := invites.Revoke(ctx, admin, invite.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	listed, err := invites.List(ctx, admin)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != model.InviteStatusRevoked {
		t.Errorf("Expected one revoked invite, got %+v", listed)
	}

	checked, err := invites.Check(ctx, invite.Code)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if checked.Redeemable() {
		t.Error("Expected revoked invite to not be redeemable")
	}
}
