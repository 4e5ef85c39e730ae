// Package imagestore archives uploaded screenshots on the local filesystem.
package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"portfolio_backend/internal/feature/portfolio/usecase"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes images as <timestamp>_<tag>_<uuid><ext> under dir.
type Store struct {
	dir   string
	now   func() time.Time
	newID func() string
}

var _ usecase.ImageArchive = (*Store)(nil)

// NewStore returns a Store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now, newID: uuid.NewString}
}

// Save writes data and returns the file name relative to the store directory.
func (s *Store) Save(ctx context.Context, tag, mimeType string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	ext, ok := extensions[mimeType]
	if !ok {
		ext = ".img"
	}
	name := fmt.Sprintf("%s_%s_%s%s", s.now().Format("20060102150405"), sanitize(tag), s.newID(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Remove deletes a previously saved image. Missing files are not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitize(tag string) string {
	s := unsafeChars.ReplaceAllString(tag, "-")
	if s == "" {
		return "untagged"
	}
	return s
}
