// Package fonts maintains the inventory of TrueType fonts available for
// captcha rendering, scanned from the configured font directory.
package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const fontGlob = "*.ttf"

// Store keeps the scanned font list in-memory and guards access with a RWMutex.
type Store struct {
	dir string

	mu    sync.RWMutex
	paths []string
}

// NewStore creates a Store for the given font directory. No scan is performed
// until Scan is called.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory this store scans.
func (s *Store) Dir() string {
	return s.dir
}

// Scan reads the font directory for .ttf files and replaces the cached list.
// A directory that does not exist yields an empty inventory rather than an
// error; a path that exists but cannot be read as a directory is an error.
func (s *Store) Scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.mu.Lock()
			s.paths = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read font directory: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(fontGlob, entry.Name()); ok {
			matches = append(matches, filepath.Join(s.dir, entry.Name()))
		}
	}
	sort.Strings(matches)

	s.mu.Lock()
	s.paths = matches
	s.mu.Unlock()

	return nil
}

// List returns a defensive copy of the scanned font paths.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Len returns the number of fonts found by the last scan.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.paths)
}
