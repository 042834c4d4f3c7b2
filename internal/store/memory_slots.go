package store

import (
	"context"
	"sync"
)

// MemorySlots keeps slots in process memory. Contents are lost on restart.
type MemorySlots struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySlots constructs an empty MemorySlots.
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{values: make(map[string]string)}
}

func memoryKey(owner, key string) string {
	return owner + "\x00" + key
}

func (s *MemorySlots) Load(_ context.Context, owner, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[memoryKey(owner, key)]
	if !ok {
		return "", ErrSlotNotFound
	}
	return value, nil
}

func (s *MemorySlots) Save(_ context.Context, owner, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[memoryKey(owner, key)] = value
	return nil
}

func (s *MemorySlots) Delete(_ context.Context, owner, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, memoryKey(owner, key))
	return nil
}
