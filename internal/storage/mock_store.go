package storage

import (
	"context"
	"sync"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
)

// MockStore is an in-memory implementation of ObjectStore for testing.
type MockStore struct {
	mu      sync.RWMutex
	objects map[hash.SHA1]*Object
	calls   MockCalls

	// Error hooks for testing
	getErr    error
	putErr    error
	lookupErr error
}

// MockCalls tracks method invocations for test verification.
type MockCalls struct {
	Get    int
	Has    int
	Lookup int
	Put    int
	Close  int
}

// NewMockStore creates a new in-memory object store.
func NewMockStore() *MockStore {
	return &MockStore{
		objects: make(map[hash.SHA1]*Object),
	}
}

// Get retrieves a copy of an object.
func (m *MockStore) Get(_ context.Context, id hash.SHA1) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Get++

	if m.getErr != nil {
		return nil, m.getErr
	}
	obj, ok := m.objects[id]
	if !ok {
		return nil, notFound(id)
	}
	out := *obj
	out.Data = append([]byte(nil), obj.Data...)
	return &out, nil
}

// Has checks if an object exists.
func (m *MockStore) Has(_ context.Context, id hash.SHA1) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Has++
	_, ok := m.objects[id]
	return ok, nil
}

// Lookup returns the ids matching p.
func (m *MockStore) Lookup(_ context.Context, p hash.Prefix) ([]hash.SHA1, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Lookup++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	var out []hash.SHA1
	for id := range m.objects {
		if p.Matches(id) {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out, nil
}

// Put stores an object.
func (m *MockStore) Put(_ context.Context, kind object.Kind, body []byte) (hash.SHA1, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Put++

	if m.putErr != nil {
		return hash.Zero, m.putErr
	}
	id := object.ID(kind, body)
	if _, ok := m.objects[id]; !ok {
		m.objects[id] = &Object{ID: id, Kind: kind, Data: append([]byte(nil), body...), Source: SourceMemory}
	}
	return id, nil
}

// Close releases resources.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Close++
	return nil
}

// Calls returns a snapshot of method invocation counts.
func (m *MockStore) Calls() MockCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Len returns the number of stored objects.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// SetGetError makes Get fail with err.
func (m *MockStore) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// SetPutError makes Put fail with err.
func (m *MockStore) SetPutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// SetLookupError makes Lookup fail with err.
func (m *MockStore) SetLookupError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupErr = err
}

// Reset clears all objects and counters.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = make(map[hash.SHA1]*Object)
	m.calls = MockCalls{}
	m.getErr = nil
	m.putErr = nil
	m.lookupErr = nil
}

var _ ObjectStore = (*MockStore)(nil)
var _ ObjectStore = (*LooseStore)(nil)
var _ ObjectStore = (*PackStore)(nil)
var _ ObjectStore = (*MultiStore)(nil)
