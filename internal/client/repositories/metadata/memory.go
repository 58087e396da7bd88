package metadata

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is a process-local backing store. Data is lost on exit.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Namespace(name string) Repository {
	return &MemoryRepository{store: s, namespace: name}
}

type MemoryRepository struct {
	store     *MemoryStore
	namespace string
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	v, ok := r.store.data[r.namespace][key]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ns := r.store.data[r.namespace]
	if ns == nil {
		ns = make(map[string][]byte)
		r.store.data[r.namespace] = ns
	}
	ns[key] = clone(value)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.data[r.namespace], key)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make(map[string][]byte, len(r.store.data[r.namespace]))
	for k, v := range r.store.data[r.namespace] {
		out[k] = clone(v)
	}
	return out, nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.data, r.namespace)
	return nil
}

// Update stages writes on a private copy of the namespace and swaps it in
// when fn succeeds. Writes made by others while fn runs are overwritten.
func (r *MemoryRepository) Update(ctx context.Context, fn func(tx Repository) error) error {
	r.store.mu.RLock()
	staged := NewMemoryStore()
	staged.data[r.namespace] = maps.Clone(r.store.data[r.namespace])
	r.store.mu.RUnlock()

	if err := fn(staged.Namespace(r.namespace)); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if ns := staged.data[r.namespace]; len(ns) > 0 {
		r.store.data[r.namespace] = ns
	} else {
		delete(r.store.data, r.namespace)
	}
	return nil
}

func clone(b []byte) []byte {
	return append([]byte{}, b...)
}
