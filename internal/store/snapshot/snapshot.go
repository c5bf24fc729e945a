// Package snapshot caches the last successfully fetched todo list.
//
// The client holds no authoritative data; this is a read-through cache so
// `todoc ls -plain -cached` can render something while the backend is
// unreachable. Written only after a successful unfiltered fetch, never
// consulted by the live view.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/idilsaglam/todoc/internal/auth"
	"github.com/idilsaglam/todoc/internal/model"
)

const fileName = "snapshot.json"

// File is the on-disk cache format.
type File struct {
	Backend   string       `json:"backend"`
	FetchedAt time.Time    `json:"fetched_at"`
	Items     []model.Item `json:"items"`
}

// DefaultPath returns ~/.todoc/snapshot.json.
func DefaultPath() (string, error) {
	dir, err := auth.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads a cache file. A missing file returns (nil, nil): no cache is
// not an error.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if f.Items == nil {
		f.Items = []model.Item{}
	}
	return &f, nil
}

// Save writes the cache file, creating the directory if needed.
func Save(path, backend string, items []model.Item) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f := File{Backend: backend, FetchedAt: time.Now().UTC(), Items: items}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
