package storage

import (
	"context"
	"errors"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrSimulated is the failure injected by MemoryStore knobs
var ErrSimulated = errors.New("simulated storage failure")

// MemoryStore keeps objects in a map. Used by tests in place of S3Store,
// with per-operation failure injection.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// When set, the matching operation returns this error
	StoreErr  error
	ExistsErr error
	FetchErr  error
	DeleteErr error

	// When > 0, Store fails after this many successful calls
	FailAfter int
	stored    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Store(_ context.Context, data []byte, folder string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StoreErr != nil {
		return "", "", m.StoreErr
	}

	if m.FailAfter > 0 && m.stored >= m.FailAfter {
		return "", "", ErrSimulated
	}

	key := folder + "/" + gonanoid.MustGenerate(keyAlphabet, 16)
	cp := make([]byte, len(data))
	copy(cp, data)

	m.objects[key] = cp
	m.stored++

	return key, "memory://" + key, nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}

	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStore) Fetch(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	delete(m.objects, key)
	return nil
}

// Remove drops an object without going through Delete, simulating an
// out-of-band deletion on the remote side
func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

// Corrupt flips a byte of a stored object
func (m *MemoryStore) Corrupt(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data, ok := m.objects[key]; ok && len(data) > 0 {
		data[0] ^= 0xff
	}
}

// Len reports how many objects are currently stored
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
