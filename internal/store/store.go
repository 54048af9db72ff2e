// Package store provides the key-value backends that persist wprefs records.
//
// Every backend stores values as JSON documents under a string key and reports
// a missing key as ErrNotFound.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

const DirName = ".wprefs"

var ErrNotFound = errors.New("not found")

// KV is the capability shared by all backends.
type KV interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	// Delete removes key. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	Close() error
}

// File stores each key as <key>.json inside a directory.
type File struct {
	path string
}

// DefaultDir returns ~/.wprefs.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// NewFile creates a File store rooted at dir, ensuring the directory exists.
func NewFile(dir string) (*File, error) {
	s := &File{path: dir}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// init creates the store directory if it doesn't exist.
func (s *File) init() error {
	if err := os.MkdirAll(s.path, 0755); err != nil {
		return oops.In("store").With("path", s.path).Wrapf(err, "creating store directory")
	}
	return nil
}

func (s *File) file(key string) string {
	return filepath.Join(s.path, fileName(key))
}

// fileName maps a key to a flat file name; path separators are not allowed
// to escape the store directory.
func fileName(key string) string {
	key = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return key + ".json"
}

// Write writes raw bytes for key.
func (s *File) Write(key string, data []byte) error {
	return os.WriteFile(s.file(key), data, 0644)
}

// Read reads raw bytes for key.
func (s *File) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Get reads the JSON document stored under key into v.
func (s *File) Get(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.Read(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return oops.In("store").With("key", key).Wrapf(err, "reading %s", s.file(key))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "decoding %s", s.file(key))
	}
	return nil
}

// Set marshals v to JSON and overwrites whatever was stored under key.
func (s *File) Set(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "encoding value")
	}
	if err := s.Write(key, data); err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "writing %s", s.file(key))
	}
	return nil
}

// Delete removes the document stored under key.
func (s *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "removing %s", s.file(key))
	}
	return nil
}

// Close is a no-op for File.
func (s *File) Close() error {
	return nil
}
