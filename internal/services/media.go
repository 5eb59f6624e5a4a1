package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Upload is one file submitted with a mutation, decoupled from the HTTP
// transport. When Name parses as a UUID it becomes the Gallery identity.
type Upload struct {
	Name    string
	Content io.Reader
}

// MediaStore persists uploaded file content and returns the stored
// reference recorded on the Gallery row. The actual backend (local disk,
// object storage) is outside the survey pipeline's contract.
type MediaStore interface {
	Store(name string, r io.Reader) (string, error)
}

// LocalMediaStore writes uploads under root/attachments/YYYY/MM/DD/.
type LocalMediaStore struct {
	Root string
}

// Store writes the content to disk and returns the relative reference.
func (s *LocalMediaStore) Store(name string, r io.Reader) (string, error) {
	now := time.Now().UTC()
	dir := filepath.Join(s.Root, "attachments", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	// Prefix with a fresh uuid so colliding client names never overwrite.
	stored := filepath.Join(dir, fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(name)))
	f, err := os.Create(stored)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return stored, nil
}
