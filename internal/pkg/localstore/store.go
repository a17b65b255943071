package localstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Namespace prefixes every key that carries session state.
const Namespace = "farm.auth"

// SessionKey is the file holding the persisted session.
const SessionKey = Namespace + ".token"

const deletedMarker = "-"

var ErrInvalidKey = errors.New("localstore: invalid key")

// FileStore is a directory of small files, one per key, shared between processes.
type FileStore struct {
	dir string

	mu      sync.Mutex
	lastOwn map[string]string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir, lastOwn: make(map[string]string)}, nil
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key), nil
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *FileStore) Get(key string) (value []byte, ok bool, err error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set replaces the value under key atomically.
func (s *FileStore) Set(key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	s.remember(key, digest(value))
	if err := os.Rename(tmp.Name(), p); err != nil {
		return err
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.remember(key, deletedMarker)
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) GetJSON(key string, v any) (bool, error) {
	data, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *FileStore) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}

func (s *FileStore) remember(key, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOwn[key] = state
}

// ownsCurrent reports whether the file under key is exactly what this store last wrote.
func (s *FileStore) ownsCurrent(key string) bool {
	s.mu.Lock()
	last, ok := s.lastOwn[key]
	s.mu.Unlock()
	if !ok {
		return false
	}

	data, present, err := s.Get(key)
	if err != nil {
		return false
	}
	if !present {
		return last == deletedMarker
	}
	return last == digest(data)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
