package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/homehub/panel/internal/config"
	"github.com/homehub/panel/internal/model"
	"go.uber.org/zap"
)

func newStorageService(t *testing.T) (*StorageService, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Root: root}, zap.NewNop())
	return svc, root
}

func TestStorageService_Browse(t *testing.T) {
	env := newTestEnv(t)
	svc, root := newStorageService(t)
	ctx := context.Background()

	admin := env.user(t, "adm", model.GlobalRoleAdmin)

	if err := os.MkdirAll(filepath.Join(root, "photos"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	listing, err := svc.Browse(ctx, admin, "/")
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if len(listing.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(listing.Entries))
	}
	// Directories sort first
	if !listing.Entries[0].IsDir || listing.Entries[0].Name != "photos" {
		t.Errorf("Expected photos dir first, got %+v", listing.Entries[0])
	}
	if listing.Entries[1].Size != 5 {
		t.Errorf("Expected notes.txt size 5, got %d", listing.Entries[1].Size)
	}
	if listing.TotalSize != 5 {
		t.Errorf("Expected total size 5, got %d", listing.TotalSize)
	}
}

func TestStorageService_TraversalRejected(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newStorageService(t)
	ctx := context.Background()

	admin := env.user(t, "adm2", model.GlobalRoleAdmin)

	if _, err := svc.Browse(ctx, admin, "../../etc"); err == nil {
		t.Error("Expected traversal to be rejected")
	}
	if err := svc.Delete(ctx, admin, "../secret"); err == nil {
		t.Error("Expected traversal delete to be rejected")
	}
}

func TestStorageService_NonAdminRefused(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newStorageService(t)
	ctx := context.Background()

	plain := env.user(t, "usr", model.GlobalRoleUser)

	if _, err := svc.Browse(ctx, plain, "/"); err == nil {
		t.Error("Expected non-admin to be refused storage access")
	}
}

func TestStorageService_Delete(t *testing.T) {
	env := newTestEnv(t)
	svc, root := newStorageService(t)
	ctx := context.Background()

	admin := env.user(t, "adm3", model.GlobalRoleAdmin)

	path := filepath.Join(root, "old.log")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, admin, "/old.log"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be removed")
	}

	// The root itself is off limits
	if err := svc.Delete(ctx, admin, "/"); err == nil {
		t.Error("Expected root deletion to be refused")
	}
}
