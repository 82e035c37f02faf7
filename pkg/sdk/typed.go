package sdk

import "encoding/json"

// Get retrieves a type-safe value using Go generics.
// It handles JSON unmarshaling into the target type automatically.
func Get[T any](s KVReader, namespace, bucket, key string) (T, error) {
	var target T
	val, err := s.Get(namespace, bucket, key)
	if err != nil {
		return target, err
	}

	// If it's already the right type (set in this process), just return it
	if v, ok := val.(T); ok {
		return v, nil
	}

	// Otherwise it is a map/slice decoded from JSON, so we re-marshal/unmarshal
	bytes, err := json.Marshal(val)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(bytes, &target)
	return target, err
}

// Set stores a type-safe value using Go generics.
func Set[T any](s KVWriter, namespace, bucket, key string, val T) error {
	return s.Set(namespace, bucket, key, val)
}
