package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestMemStore_GetSetDelete(t *testing.T) {
	ms := NewMemStore(nil, nil)

	ns := "imperivm"
	bucket := "v2"
	key := "members"
	val := "test-value"

	if err := ms.Set(ns, bucket, key, val); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := ms.Get(ns, bucket, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != val {
		t.Errorf("Expected %v, got %v", val, got)
	}

	_, err = ms.Get(ns, bucket, "non-existent")
	if err != ErrKeyNotFound {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
	_, err = ms.Get(ns, "other", key)
	if err != ErrBucketNotFound {
		t.Errorf("Expected ErrBucketNotFound, got %v", err)
	}
	_, err = ms.Get("other", bucket, key)
	if err != ErrNamespaceNotFound {
		t.Errorf("Expected ErrNamespaceNotFound, got %v", err)
	}

	if err := ms.Delete(ns, bucket, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = ms.Get(ns, bucket, key)
	if err != ErrKeyNotFound {
		t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestMemStore_NamespacesBuckets(t *testing.T) {
	ms := NewMemStore(nil, nil)

	ms.Set("n2", "b2", "k2", "v2")
	ms.Set("n1", "b1", "k1", "v1")

	namespaces, _ := ms.Namespaces()
	if len(namespaces) != 2 || namespaces[0] != "n1" || namespaces[1] != "n2" {
		t.Errorf("Expected [n1 n2], got %v", namespaces)
	}

	buckets, _ := ms.Buckets("n1")
	if len(buckets) != 1 || buckets[0] != "b1" {
		t.Errorf("Expected [b1], got %v", buckets)
	}
}

func TestMemStore_SetManyAndDump(t *testing.T) {
	ms := NewMemStore(nil, nil)
	ms.SetMany("n1", "b1", map[string]any{"a": 1, "b": 2})

	dump, err := ms.Dump("n1", "b1")
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if len(dump) != 2 || dump["a"] != 1 || dump["b"] != 2 {
		t.Errorf("Dump mismatch: %v", dump)
	}

	dump["a"] = 99
	if v, _ := ms.Get("n1", "b1", "a"); v != 1 {
		t.Errorf("Dump must return a copy, store now holds %v", v)
	}

	if _, err := ms.Dump("n1", "missing"); err != ErrBucketNotFound {
		t.Errorf("Expected ErrBucketNotFound, got %v", err)
	}
}

func TestFilePersistence(t *testing.T) {
	tmpDir := t.TempDir()

	p, err := NewFilePersistence(tmpDir)
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}

	data := map[string]map[string]any{
		"v2": {
			"closed": true,
		},
	}

	if err := p.Save("imperivm", 1, data); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "imperivm.json")); os.IsNotExist(err) {
		t.Fatal("Namespace file was not created")
	}

	allData, err := p.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(allData) != 1 {
		t.Errorf("Expected 1 namespace, got %d", len(allData))
	}

	if allData["imperivm"]["v2"]["closed"] != true {
		t.Errorf("Loaded data mismatch: %v", allData["imperivm"])
	}
}

func TestFilePersistence_DropsStaleRevisions(t *testing.T) {
	p, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}

	p.Save("ns", 2, map[string]map[string]any{"b": {"k": "new"}})
	p.Save("ns", 1, map[string]map[string]any{"b": {"k": "old"}})

	allData, _ := p.LoadAll()
	if allData["ns"]["b"]["k"] != "new" {
		t.Errorf("Stale revision overwrote newer data: %v", allData["ns"])
	}
}

func TestFilePersistence_SkipsCorruptFiles(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, _ := NewFilePersistence(tmpDir)
	p.Save("good", 1, map[string]map[string]any{"b": {"k": "v"}})

	allData, err := p.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if _, ok := allData["broken"]; ok {
		t.Error("Corrupt namespace should be skipped")
	}
	if allData["good"]["b"]["k"] != "v" {
		t.Errorf("Good namespace missing: %v", allData)
	}
}

func TestMemStore_Persistence(t *testing.T) {
	p, _ := NewFilePersistence(t.TempDir())
	ms := NewMemStore(nil, p)

	for i := 0; i < 20; i++ {
		if err := ms.Set("n1", "b1", "counter", i); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	ms.Wait() // Wait for background persistence

	allData, _ := p.LoadAll()
	ms2 := NewMemStore(allData, p)

	val, err := ms2.Get("n1", "b1", "counter")
	if err != nil {
		t.Fatalf("Get on new store failed: %v", err)
	}
	// JSON numbers come back as float64.
	if val != float64(19) {
		t.Errorf("Expected the last write (19), got %v", val)
	}
}

func TestMemStore_Concurrent(t *testing.T) {
	ms := NewMemStore(nil, nil)
	const (
		numGoroutines = 10
		numOps        = 100
	)
	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*numOps)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				ms.Set("n1", "b1", key, j)
				val, err := ms.Get("n1", "b1", key)
				if err != nil || val != j {
					errs <- fmt.Errorf("expected %d, got %v, err %v", j, val, err)
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestCopy(t *testing.T) {
	src := NewMemStore(nil, nil)
	src.Set("n1", "b1", "k1", "v1")
	src.Set("n1", "b2", "k2", "v2")
	src.Set("n2", "b1", "k3", "v3")

	dst := NewMemStore(nil, nil)
	if err := Copy(src, dst); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	for _, c := range []struct{ ns, bucket, key, want string }{
		{"n1", "b1", "k1", "v1"},
		{"n1", "b2", "k2", "v2"},
		{"n2", "b1", "k3", "v3"},
	} {
		got, err := dst.Get(c.ns, c.bucket, c.key)
		if err != nil || got != c.want {
			t.Errorf("%s/%s/%s: got %v, err %v", c.ns, c.bucket, c.key, got, err)
		}
	}
}
