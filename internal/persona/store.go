// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package persona stores named text profiles as individual files in a
// single directory. The filesystem is the only source of truth: every
// operation reads or writes the directory directly.
package persona

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/persona-mcp/pkg/types"
)

var (
	// ErrNotFound reports a persona that does not exist or cannot be read.
	ErrNotFound = errors.New("not found")

	// ErrInvalidName reports a name that cannot be used as a filename stem.
	ErrInvalidName = errors.New("invalid persona name")
)

// Store reads and writes persona files under a fixed directory.
type Store struct {
	dir string
	ext string
}

// NewStore returns a Store for cfg.Dir. The directory is not touched until
// Init or the first operation.
func NewStore(cfg types.PersonaConfig) *Store {
	ext := cfg.Extension
	if ext == "" {
		ext = types.DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Store{dir: cfg.Dir, ext: ext}
}

// DefaultDir returns ~/.persona.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".persona"), nil
}

// Dir returns the persona directory.
func (s *Store) Dir() string { return s.dir }

// Extension returns the recognized file suffix, including the dot.
func (s *Store) Extension() string { return s.ext }

// Init creates the persona directory if it does not exist.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating persona directory %s: %w", s.dir, err)
	}
	return nil
}

// Path returns the file that holds the named persona.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+s.ext)
}

// List returns the names of all stored personas in directory order.
// A missing directory is an empty store.
func (s *Store) List() ([]string, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// Entries is List with file paths and modification times.
func (s *Store) Entries() ([]types.PersonaEntry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.PersonaEntry{}, nil
		}
		return nil, fmt.Errorf("reading persona directory %s: %w", s.dir, err)
	}

	entries := make([]types.PersonaEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), s.ext) {
			continue
		}
		// Stat follows symlinks, so a linked profile lists like a file.
		info, err := os.Stat(filepath.Join(s.dir, de.Name()))
		if err != nil || info.IsDir() {
			// Removed since ReadDir, or a dangling link.
			continue
		}
		entries = append(entries, types.PersonaEntry{
			Name:    strings.TrimSuffix(de.Name(), s.ext),
			Path:    filepath.Join(s.dir, de.Name()),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Read returns the raw content of the named persona.
func (s *Store) Read(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("persona %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("persona %q: %w: %v", name, ErrNotFound, err)
	}
	return string(data), nil
}

// Save writes content as the named persona, replacing any previous content.
func (s *Store) Save(name, content string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.WriteFile(s.Path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("saving persona %q: %w", name, err)
	}
	return nil
}

// Delete removes the named persona.
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("persona %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("deleting persona %q: %w", name, err)
	}
	return nil
}

// checkName rejects names that would escape the directory. Names are
// otherwise used verbatim.
func checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return nil
}
