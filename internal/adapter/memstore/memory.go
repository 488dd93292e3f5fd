package memstore

import (
	"fmt"
	"sync"
)

type key struct {
	provider string
	src      string
	tgt      string
	unit     string
}

// Memory is an in-process translation memory. It lives for one run and lets
// repeated lines across caches and files reach the provider once.
type Memory struct {
	mu      sync.RWMutex
	entries map[key]string
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[key]string),
	}
}

func (m *Memory) Lookup(provider, src, tgt string, units []string) (map[int]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make(map[int]string)
	for i, u := range units {
		if text, ok := m.entries[key{provider, src, tgt, u}]; ok {
			found[i] = text
		}
	}
	return found, nil
}

func (m *Memory) Store(provider, src, tgt string, units, translations []string) error {
	if len(units) != len(translations) {
		return fmt.Errorf("store: %d units but %d translations", len(units), len(translations))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range units {
		m.entries[key{provider, src, tgt, u}] = translations[i]
	}
	return nil
}

// Count returns the number of stored translations.
func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}
