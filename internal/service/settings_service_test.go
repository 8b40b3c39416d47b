package service

import (
	"context"
	"testing"

	"github.com/homehub/panel/internal/model"
)

func TestSettingsService_DefaultsAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	settings := NewSettingsService(env.settingRepo, env.logger)
	ctx := context.Background()

	admin := env.user(t, "adm", model.GlobalRoleAdmin)

	current, err := settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.AllowRegistration {
		t.Error("Expected registration closed by default")
	}
	if current.AIRateLimit != defaultAIRateLimit {
		t.Errorf("Expected default rate limit %d, got %d", defaultAIRateLimit, current.AIRateLimit)
	}

	open := true
	rate := 10
	updated, err := settings.Update(ctx, &UpdateSettingsInput{
		Actor:             admin,
		AllowRegistration: &open,
		AIRateLimit:       &rate,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.AllowRegistration || updated.AIRateLimit != 10 {
		t.Errorf("Settings not applied: %+v", updated)
	}
	// Untouched keys keep their defaults
	if updated.MaxDevicesPerUser != defaultMaxDevicesPerUser {
		t.Errorf("Expected untouched default, got %d", updated.MaxDevicesPerUser)
	}
}

func TestSettingsService_NonAdminRefused(t *testing.T) {
	env := newTestEnv(t)
	settings := NewSettingsService(env.settingRepo, env.logger)
	ctx := context.Background()

	plain := env.user(t, "usr", model.GlobalRoleUser)

	open := true
	if _, err := settings.Update(ctx, &UpdateSettingsInput{Actor: plain, AllowRegistration: &open}); err == nil {
		t.Error("Expected non-admin to be refused settings update")
	}
}

func TestSettingsService_ValidationRejectsNegatives(t *testing.T) {
	env := newTestEnv(t)
	settings := NewSettingsService(env.settingRepo, env.logger)
	ctx := context.Background()

	admin := env.user(t, "adm2", model.GlobalRoleAdmin)

	bad := -1
	if _, err := settings.Update(ctx, &UpdateSettingsInput{Actor: admin, AIRateLimit: &bad}); err == nil {
		t.Error("Expected negative rate limit to be rejected")
	}
}
