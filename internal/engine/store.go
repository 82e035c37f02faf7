// Package engine implements the namespaced key-value store behind Imperivm:
// an in-memory tree of JSON values persisted per namespace.
package engine

import "errors"

var (
	// ErrNamespaceNotFound is returned when a requested namespace does not exist.
	ErrNamespaceNotFound = errors.New("namespace not found")
	// ErrBucketNotFound is returned when a requested bucket does not exist within a namespace.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrKeyNotFound is returned when a requested key does not exist within a bucket.
	ErrKeyNotFound = errors.New("key not found")
)

// Store is the full contract of a key-value backend.
type Store interface {
	// Get retrieves a value for a specific namespace, bucket, and key.
	Get(namespace, bucket, key string) (any, error)
	// Set stores a value for a specific namespace, bucket, and key.
	Set(namespace, bucket, key string, val any) error
	// SetMany stores several keys of one bucket with a single persistence write.
	SetMany(namespace, bucket string, values map[string]any) error
	// Delete removes a key and its value.
	Delete(namespace, bucket, key string) error

	// Namespaces returns every namespace in the store.
	Namespaces() ([]string, error)
	// Buckets returns the buckets of a namespace.
	Buckets(namespace string) ([]string, error)
	// Dump returns a copy of every key and value in a bucket.
	Dump(namespace, bucket string) (map[string]any, error)
}

// Persister writes namespace snapshots to durable storage.
//
// Save receives the revision of the snapshot; implementations must drop
// snapshots older than the newest one already written for that namespace.
type Persister interface {
	Save(namespace string, revision uint64, data map[string]map[string]any) error
	LoadAll() (map[string]map[string]map[string]any, error)
	Close() error
}
