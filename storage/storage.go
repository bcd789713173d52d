// Package storage relocates uploaded report media into durable storage and
// hands back a reference the client can fetch later.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MediaStore receives raw media bytes and returns a retrievable reference.
type MediaStore interface {
	Save(filename string, r io.Reader) (string, error)
}

// LocalStore keeps uploads on the local filesystem, served back under
// /uploads by the gateway.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the uploads directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the media to disk under a fresh name, keeping the original
// extension, and returns the /uploads reference recorded on the report.
func (s *LocalStore) Save(filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(filename)
	dest := filepath.Join(s.dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return "/uploads/" + name, nil
}
