// Package storage keeps uploaded files on local disk under a public prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrOutsideStore = errors.New("path is outside the store")

// LocalStore writes files below Dir and addresses them as PublicURL/<folder>/<name>
type LocalStore struct {
	Dir       string
	PublicURL string
}

func NewLocalStore(dir, publicURL string) *LocalStore {
	return &LocalStore{
		Dir:       dir,
		PublicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Save writes data to folder under a random name with extension ext and
// returns its public URL.
func (s *LocalStore) Save(ctx context.Context, folder, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	rel := path.Join(folder, name)

	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}

	return s.URL(rel), nil
}

// Delete removes the file behind a URL returned by Save. Missing files are
// not an error.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	rel := strings.TrimPrefix(strings.TrimPrefix(url, s.PublicURL), "/")
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", rel, err)
	}
	return nil
}

// URL is the public address of a path relative to Dir
func (s *LocalStore) URL(rel string) string {
	return s.PublicURL + "/" + strings.TrimPrefix(rel, "/")
}

func (s *LocalStore) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", ErrOutsideStore
	}
	full := filepath.Join(s.Dir, filepath.FromSlash(clean))
	root := filepath.Clean(s.Dir) + string(filepath.Separator)
	if !strings.HasPrefix(full, root) {
		return "", ErrOutsideStore
	}
	return full, nil
}
