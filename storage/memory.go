package storage

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Memory is a map-backed Store used for tests and local development.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()

	return nil
}

func (m *Memory) Get(key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()

	return nil
}

func (m *Memory) URL(key string) string {
	return "memory://" + key
}

// Len answers the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.objects)
}

// Exists reports whether a key holds an object.
func (m *Memory) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[key]
	return ok
}
