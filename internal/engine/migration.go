package engine

import (
	"errors"
	"fmt"
)

// Copy takes data from a source store and pushes it to a destination store.
// This works for file -> sqlite and back, or for backups into a fresh store.
func Copy(src Store, dst Store) error {
	namespaces, err := src.Namespaces()
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}

	for _, ns := range namespaces {
		buckets, err := src.Buckets(ns)
		if err != nil {
			return fmt.Errorf("list buckets for namespace %s: %w", ns, err)
		}

		for _, bucket := range buckets {
			data, err := src.Dump(ns, bucket)
			if err != nil {
				return fmt.Errorf("dump bucket %s/%s: %w", ns, bucket, err)
			}
			if err := dst.SetMany(ns, bucket, data); err != nil {
				return fmt.Errorf("write bucket %s/%s: %w", ns, bucket, err)
			}
		}
	}

	return nil
}

// MetaBucket holds bookkeeping keys such as the schema version.
const MetaBucket = "meta"

// VersionKey is the key under MetaBucket that records the schema version.
const VersionKey = "schema_version"

// Step upgrades one namespace from schema version From to To.
type Step struct {
	From  string
	To    string
	Apply func(s Store, namespace string) error
}

// Migrate applies steps in order starting from the namespace's recorded
// schema version (initial when none is recorded) and records the final
// version. It returns the versions reached by each applied step.
func Migrate(s Store, namespace, initial string, steps []Step) ([]string, error) {
	current := initial
	if v, err := s.Get(namespace, MetaBucket, VersionKey); err == nil {
		if str, ok := v.(string); ok && str != "" {
			current = str
		}
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	var applied []string
	for _, step := range steps {
		if step.From != current {
			continue
		}
		if err := step.Apply(s, namespace); err != nil {
			return applied, fmt.Errorf("migrate %s -> %s: %w", step.From, step.To, err)
		}
		current = step.To
		applied = append(applied, step.To)
	}

	if err := s.Set(namespace, MetaBucket, VersionKey, current); err != nil {
		return applied, fmt.Errorf("record schema version: %w", err)
	}
	return applied, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNamespaceNotFound) || errors.Is(err, ErrBucketNotFound) || errors.Is(err, ErrKeyNotFound)
}
