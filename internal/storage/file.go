package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps each key in its own JSON file under a data directory.
// Writes go to a temp file first and are renamed into place.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, wrapError(DriverFile, "open", errors.New("data directory is required"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapError(DriverFile, "open", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, wrapError(DriverFile, "get", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wrapError(DriverFile, "get", ErrKeyNotFound)
		}
		return nil, wrapError(DriverFile, "get", err)
	}
	return b, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return wrapError(DriverFile, "set", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return wrapError(DriverFile, "set", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrapError(DriverFile, "set", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrapError(DriverFile, "set", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return wrapError(DriverFile, "set", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return wrapError(DriverFile, "set", err)
	}
	return nil
}

func (s *FileStore) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return wrapError(DriverFile, "ping", err)
	}
	if !info.IsDir() {
		return wrapError(DriverFile, "ping", errors.New("data path is not a directory"))
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
