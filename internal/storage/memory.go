package storage

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, wrapError(DriverMemory, "get", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError(DriverMemory, "get", ErrClosed)
	}
	v, ok := s.data[key]
	if !ok {
		return nil, wrapError(DriverMemory, "get", ErrKeyNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return wrapError(DriverMemory, "set", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapError(DriverMemory, "set", ErrClosed)
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return wrapError(DriverMemory, "ping", ErrClosed)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
