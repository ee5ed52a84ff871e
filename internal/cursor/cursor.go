// Package cursor persists per-stream continuation tokens as flat files so
// operators can inspect or seed a stream's position by hand.
package cursor

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store maps stream keys to files under a configured base path. Each file
// holds the literal token string with no wrapping structure.
type Store struct {
	basePath string
}

// NewStore creates a Store rooted at basePath. Per-stream files are siblings
// of basePath, suffixed with the escaped stream key.
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

// PathFor returns the file backing the given stream key. The key is
// path-escaped so stream names containing separators never collide.
func (s *Store) PathFor(streamKey string) string {
	return s.basePath + "-" + url.PathEscape(streamKey)
}

// Load reads the persisted token for a stream. A missing file is a normal
// absent result, not an error. An empty or whitespace-only file is treated
// as absent: that is the only corruption a torn write can leave behind given
// the rename-based Save, and tokens are opaque so no deeper validation is
// possible.
func (s *Store) Load(streamKey string) (string, bool, error) {
	b, err := os.ReadFile(s.PathFor(streamKey))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cursor for %s: %w", streamKey, err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Save overwrites the persisted token for a stream. The token is written to
// a temporary file in the same directory and renamed into place, so a
// concurrent reader never observes a partial token.
func (s *Store) Save(streamKey, token string) error {
	path := s.PathFor(streamKey)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cursor directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("creating cursor temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cursor for %s: %w", streamKey, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cursor temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming cursor for %s: %w", streamKey, err)
	}
	return nil
}
