// Package sdk is the client-side surface of the Imperivm store: segregated
// interfaces, typed helpers and an opener for the embedded engine.
package sdk

import "github.com/celerix-dev/imperivm/internal/engine"

var (
	// ErrNamespaceNotFound is returned when a requested namespace does not exist.
	ErrNamespaceNotFound = engine.ErrNamespaceNotFound
	// ErrBucketNotFound is returned when a requested bucket does not exist within a namespace.
	ErrBucketNotFound = engine.ErrBucketNotFound
	// ErrKeyNotFound is returned when a requested key does not exist within a bucket.
	ErrKeyNotFound = engine.ErrKeyNotFound
)

// --- Functional Interfaces (Interface Segregation) ---

// KVReader defines the basic read operations for the store.
type KVReader interface {
	Get(namespace, bucket, key string) (any, error)
}

// KVWriter defines the basic write and delete operations for the store.
type KVWriter interface {
	Set(namespace, bucket, key string, val any) error
	Delete(namespace, bucket, key string) error
}

// BatchWriter writes several keys of a bucket at once.
type BatchWriter interface {
	SetMany(namespace, bucket string, values map[string]any) error
}

// Enumeration allows discovering namespaces and buckets.
type Enumeration interface {
	Namespaces() ([]string, error)
	Buckets(namespace string) ([]string, error)
}

// BatchExporter allows retrieving bulk data.
type BatchExporter interface {
	Dump(namespace, bucket string) (map[string]any, error)
}

// --- Composite Interfaces ---

// BucketStore is what a collection owner needs: typed reads and batched saves.
type BucketStore interface {
	KVReader
	BatchWriter
}

// Store combines all functional interfaces for a complete storage experience.
type Store interface {
	KVReader
	KVWriter
	BatchWriter
	Enumeration
	BatchExporter
}

// Bucket pins a namespace and bucket so callers only pass keys.
type Bucket struct {
	store     Store
	namespace string
	bucket    string
}

// NewBucket returns a scope over one bucket of s.
func NewBucket(s Store, namespace, bucket string) *Bucket {
	return &Bucket{store: s, namespace: namespace, bucket: bucket}
}

// Get retrieves a value using the pinned namespace and bucket.
func (b *Bucket) Get(key string) (any, error) {
	return b.store.Get(b.namespace, b.bucket, key)
}

// Set stores a value using the pinned namespace and bucket.
func (b *Bucket) Set(key string, val any) error {
	return b.store.Set(b.namespace, b.bucket, key, val)
}

// Delete removes a key using the pinned namespace and bucket.
func (b *Bucket) Delete(key string) error {
	return b.store.Delete(b.namespace, b.bucket, key)
}

// Dump returns every key of the pinned bucket.
func (b *Bucket) Dump() (map[string]any, error) {
	return b.store.Dump(b.namespace, b.bucket)
}
