// Package kv is the device-local key/value blob store the local storage
// provider persists into.
package kv

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrQuotaExceeded = errors.New("storage quota exceeded")

type Store interface {
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps blobs in process memory. A positive quota caps the total
// stored bytes; writes that would exceed it fail with ErrQuotaExceeded.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
	size  int
	quota int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func NewMemoryStoreWithQuota(quota int) *MemoryStore {
	s := NewMemoryStore()
	s.quota = quota
	return s
}

func (s *MemoryStore) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *MemoryStore) SetItem(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.size - len(s.items[key]) + len(value)
	if s.quota > 0 && next > s.quota {
		return ErrQuotaExceeded
	}
	s.items[key] = append([]byte(nil), value...)
	s.size = next
	return nil
}

func (s *MemoryStore) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.size -= len(s.items[key])
	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = make(map[string][]byte)
	s.size = 0
	s.mu.Unlock()
	return nil
}
