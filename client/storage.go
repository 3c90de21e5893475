package client

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/shashiranjanraj/bazaar/pkg/crypt"
)

// ErrNotFound is returned by Storage.Load when the key has never been
// saved.
var ErrNotFound = errors.New("client: key not found")

// Storage persists small state blobs between runs, keyed by name. The
// file-backed default plays the role a browser's localStorage does for
// the web app.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// FileStorage stores each key as an encrypted file under dir. Values are
// sealed with pkg/crypt, so tokens at rest are not plain text.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed. An empty dir defaults
// to ~/.bazaar.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".bazaar")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".dat")
}

func (f *FileStorage) Load(key string) ([]byte, error) {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return crypt.DecryptBytes(string(raw))
}

func (f *FileStorage) Save(key string, data []byte) error {
	sealed, err := crypt.EncryptBytes(data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(key), []byte(sealed), 0o600)
}

func (f *FileStorage) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStorage is an in-process Storage for tests and ephemeral sessions.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
