package engine

import (
	"log/slog"
	"sort"
	"sync"
)

// MemStore is the thread-safe in-memory engine. Every mutation hands a copy
// of the touched namespace to the persister in the background.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [namespace][bucket][key]value
	data      map[string]map[string]map[string]any
	revisions map[string]uint64
	persister Persister
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewMemStore initializes a store.
// It accepts existing data (from LoadAll) and an optional persister.
func NewMemStore(initialData map[string]map[string]map[string]any, p Persister) *MemStore {
	if initialData == nil {
		initialData = make(map[string]map[string]map[string]any)
	}
	return &MemStore{
		data:      initialData,
		revisions: make(map[string]uint64),
		persister: p,
		logger:    slog.Default(),
	}
}

// SetLogger replaces the logger used for background persistence failures.
func (m *MemStore) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

// Close flushes pending writes and closes the persister.
func (m *MemStore) Close() error {
	m.Wait()
	if m.persister == nil {
		return nil
	}
	return m.persister.Close()
}

func (m *MemStore) Get(namespace, bucket, key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns, ok := m.data[namespace]
	if !ok {
		return nil, ErrNamespaceNotFound
	}

	b, ok := ns[bucket]
	if !ok {
		return nil, ErrBucketNotFound
	}

	val, ok := b[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return val, nil
}

func (m *MemStore) Set(namespace, bucket, key string, val any) error {
	return m.SetMany(namespace, bucket, map[string]any{key: val})
}

func (m *MemStore) SetMany(namespace, bucket string, values map[string]any) error {
	m.mu.Lock()
	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]map[string]any)
	}
	if m.data[namespace][bucket] == nil {
		m.data[namespace][bucket] = make(map[string]any)
	}
	for k, v := range values {
		m.data[namespace][bucket][k] = v
	}
	m.persistLocked(namespace)
	m.mu.Unlock()
	return nil
}

func (m *MemStore) Delete(namespace, bucket, key string) error {
	m.mu.Lock()
	if ns, ok := m.data[namespace]; ok {
		if b, ok := ns[bucket]; ok {
			delete(b, key)
		}
	}
	m.persistLocked(namespace)
	m.mu.Unlock()
	return nil
}

// persistLocked snapshots a namespace and saves it in the background.
// It MUST be called while holding m.mu.Lock.
func (m *MemStore) persistLocked(namespace string) {
	if m.persister == nil {
		return
	}
	if _, ok := m.data[namespace]; !ok {
		return
	}
	m.revisions[namespace]++
	revision := m.revisions[namespace]
	snapshot := m.copyNamespace(namespace)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.persister.Save(namespace, revision, snapshot); err != nil {
			m.logger.Warn("persist namespace", "namespace", namespace, "revision", revision, "error", err)
		}
	}()
}

// copyNamespace creates a copy of a namespace's bucket maps.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStore) copyNamespace(namespace string) map[string]map[string]any {
	original, ok := m.data[namespace]
	if !ok {
		return nil
	}

	nsCopy := make(map[string]map[string]any, len(original))
	for bucket, values := range original {
		bucketCopy := make(map[string]any, len(values))
		for k, v := range values {
			bucketCopy[k] = v
		}
		nsCopy[bucket] = bucketCopy
	}
	return nsCopy
}

func (m *MemStore) Namespaces() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for id := range m.data {
		list = append(list, id)
	}
	sort.Strings(list)
	return list, nil
}

func (m *MemStore) Buckets(namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []string
	if buckets, ok := m.data[namespace]; ok {
		for bucket := range buckets {
			list = append(list, bucket)
		}
	}
	sort.Strings(list)
	return list, nil
}

func (m *MemStore) Dump(namespace, bucket string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ns, ok := m.data[namespace]; ok {
		if b, ok := ns[bucket]; ok {
			// Return a copy to prevent external mutation of the internal map
			out := make(map[string]any, len(b))
			for k, v := range b {
				out[k] = v
			}
			return out, nil
		}
	}
	return nil, ErrBucketNotFound
}
