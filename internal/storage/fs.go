package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps blobs on the local filesystem under a root directory.
type FSStore struct {
	root   string
	logger *slog.Logger
}

func NewFSStore(root string, logger *slog.Logger) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FSStore{root: abs, logger: logger}, nil
}

func (s *FSStore) Upload(_ context.Context, path string, data []byte, _ string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		s.logger.Error("blob write failed", "path", path, "error", err)
		return fmt.Errorf("write blob: %w", err)
	}
	s.logger.Debug("blob stored", "path", path, "bytes", len(data))
	return nil
}

func (s *FSStore) Download(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		s.logger.Error("blob read failed", "path", path, "error", err)
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// resolve joins and guards against path escape out of the root.
func (s *FSStore) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) && full != s.root {
		return "", fmt.Errorf("blob path %q escapes storage root", path)
	}
	return full, nil
}
