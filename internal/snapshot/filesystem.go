package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSystemStore writes snapshots below a root directory:
//
//	<root>/
//	  <YYYYMMDD>/
//	    <mode>/
//	      <name>.json
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a store rooted at root, resolved to an absolute path
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileSystemStore{root: abs}, nil
}

// Root returns the absolute base directory
func (s *FileSystemStore) Root() string { return s.root }

// Put writes data to <root>/<key> and returns the absolute file path.
// Missing directories are created; one that already exists, possibly created
// by a concurrent request, is not an error.
func (s *FileSystemStore) Put(_ context.Context, key string, data []byte) (string, error) {
	dest := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return dest, nil
}
