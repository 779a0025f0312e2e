package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultBasePath = "./storage"

// FileSystemStore keeps frozen documents under a local directory.
// Keys are slash separated paths relative to the base directory.
type FileSystemStore struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSystemStore creates the base directory if needed
func NewFileSystemStore(basePath string, logger *zap.Logger) (*FileSystemStore, error) {
	if basePath == "" {
		basePath = defaultBasePath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileSystemStore{basePath: abs, logger: logger}, nil
}

// BasePath returns the absolute storage root
func (s *FileSystemStore) BasePath() string {
	return s.basePath
}

// Put writes data under key once. Writing identical bytes again succeeds;
// different bytes fail with ErrContentExists.
func (s *FileSystemStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}

	// link fails when the target exists, so a key is never overwritten
	if err := os.Link(tmpName, path); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("store document: %w", err)
		}
		existing, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read existing document: %w", readErr)
		}
		if !bytes.Equal(existing, data) {
			return printing.ErrContentExists.Newf("key %s already holds different content", key)
		}
		return nil
	}

	s.logger.Debug("document stored", zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

// Get reads the bytes stored under key
func (s *FileSystemStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.ErrNotFound.Newf("document %s not found", key)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileSystemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// resolve maps key onto the file system and rejects anything that would
// leave the base directory
func (s *FileSystemStore) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", shared.ErrInvalidInput.Newf("invalid storage key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", shared.ErrInvalidInput.Newf("invalid storage key %q", key)
		}
	}
	path := filepath.Join(s.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", shared.ErrInvalidInput.Newf("invalid storage key %q", key)
	}
	return path, nil
}

var _ printing.ContentStore = (*FileSystemStore)(nil)
