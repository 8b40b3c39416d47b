package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/homehub/panel/internal/config"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"go.uber.org/zap"
)

// StorageEntry is one file or directory inside the storage root
type StorageEntry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	IsDir      bool      `json:"is_dir"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// StorageListing is a directory listing plus usage of the whole root
type StorageListing struct {
	Path      string         `json:"path"`
	Entries   []StorageEntry `json:"entries"`
	TotalSize int64          `json:"total_size"`
}

type StorageService struct {
	root   string
	logger *zap.Logger
}

func NewStorageService(cfg *config.StorageConfig, logger *zap.Logger) *StorageService {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		root = cfg.Root
	}
	return &StorageService{
		root:   root,
		logger: logger,
	}
}

// resolve maps a client-supplied path into the storage root and rejects any
// traversal outside it.
func (s *StorageService) resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	abs = filepath.Clean(abs)
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", apperrors.ErrForbidden.WithDetails("path escapes the storage root")
	}
	return abs, nil
}

// Browse lists a directory inside the storage root. Global admins only.
func (s *StorageService) Browse(ctx context.Context, actor *Actor, rel string) (*StorageListing, error) {
	if !actor.Role.IsGlobalAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	abs, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("Failed to read storage directory", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	listing := &StorageListing{
		Path:    "/" + strings.TrimPrefix(filepath.ToSlash(strings.TrimPrefix(abs, s.root)), "/"),
		Entries: make([]StorageEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		relPath := filepath.ToSlash(filepath.Join(strings.TrimPrefix(abs, s.root), entry.Name()))
		listing.Entries = append(listing.Entries, StorageEntry{
			Name:       entry.Name(),
			Path:       "/" + strings.TrimPrefix(relPath, "/"),
			IsDir:      entry.IsDir(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}

	// Directories first, then by name
	sort.Slice(listing.Entries, func(i, j int) bool {
		if listing.Entries[i].IsDir != listing.Entries[j].IsDir {
			return listing.Entries[i].IsDir
		}
		return listing.Entries[i].Name < listing.Entries[j].Name
	})

	listing.TotalSize = s.usage()

	return listing, nil
}

// Delete removes a file or empty directory inside the storage root
func (s *StorageService) Delete(ctx context.Context, actor *Actor, rel string) error {
	if !actor.Role.IsGlobalAdmin() {
		return apperrors.ErrPermissionDenied
	}

	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if abs == s.root {
		return apperrors.ErrBadRequest.WithDetails("cannot delete the storage root")
	}

	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.ErrNotFound
		}
		s.logger.Error("Failed to delete storage entry", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("Storage entry deleted",
		zap.String("path", rel),
		zap.Int64("deleted_by", actor.UserID),
	)

	return nil
}

func (s *StorageService) usage() int64 {
	var total int64
	_ = filepath.WalkDir(s.root, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
