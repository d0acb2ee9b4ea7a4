// Package theme persists the light or dark preference across runs.
package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	Light = "light"
	Dark  = "dark"
)

// Store keeps the preference in a small file, defaulting to light
// when the file is missing or holds anything unexpected.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Current() (string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Light, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading theme file: %w", err)
	}

	if strings.TrimSpace(string(raw)) == Dark {
		return Dark, nil
	}

	return Light, nil
}

// Toggle flips the preference and returns the new value.
func (s *Store) Toggle() (string, error) {
	current, err := s.Current()
	if err != nil {
		return "", err
	}

	next := Dark
	if current == Dark {
		next = Light
	}

	if err := os.WriteFile(s.path, []byte(next+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing theme file: %w", err)
	}

	return next, nil
}
