package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// revisionGate remembers the newest revision written per namespace.
type revisionGate struct {
	written map[string]uint64
}

// admit reports whether revision is newer than anything written so far and
// records it if so.
func (g *revisionGate) admit(namespace string, revision uint64) bool {
	if g.written == nil {
		g.written = make(map[string]uint64)
	}
	if revision <= g.written[namespace] {
		return false
	}
	g.written[namespace] = revision
	return true
}

// FilePersistence stores each namespace as one JSON file in a directory.
type FilePersistence struct {
	DataDir string
	Logger  *slog.Logger

	mu   sync.Mutex // Protects concurrent writes to the filesystem
	gate revisionGate
}

// NewFilePersistence initializes a persistence handler rooted at dir.
func NewFilePersistence(dir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FilePersistence{DataDir: dir, Logger: slog.Default()}, nil
}

// Save writes a namespace to <namespace>.json atomically.
func (p *FilePersistence) Save(namespace string, revision uint64, data map[string]map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.gate.admit(namespace, revision) {
		return nil
	}

	filePath := filepath.Join(p.DataDir, namespace+".json")
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode namespace %s: %w", namespace, err)
	}

	if err := os.WriteFile(tempPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write namespace %s: %w", namespace, err)
	}

	// If the process dies here the previous file is still intact.
	return os.Rename(tempPath, filePath)
}

// LoadAll returns all namespace data found in the data directory.
// Unreadable or corrupt files are skipped with a warning.
func (p *FilePersistence) LoadAll() (map[string]map[string]map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	allData := make(map[string]map[string]map[string]any)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		namespace := strings.TrimSuffix(file.Name(), ".json")

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			p.logger().Warn("skip unreadable namespace file", "file", file.Name(), "error", err)
			continue
		}

		var nsData map[string]map[string]any
		if err := json.Unmarshal(content, &nsData); err != nil {
			p.logger().Warn("skip corrupt namespace file", "file", file.Name(), "error", err)
			continue
		}
		allData[namespace] = nsData
	}
	return allData, nil
}

// Close is a no-op; files are closed after every write.
func (p *FilePersistence) Close() error { return nil }

func (p *FilePersistence) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
