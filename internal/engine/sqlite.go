package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS namespaces (
	name       TEXT PRIMARY KEY,
	revision   INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLitePersistence stores each namespace as one JSON row in a SQLite file.
type SQLitePersistence struct {
	Logger *slog.Logger

	db   *sql.DB
	mu   sync.Mutex
	gate revisionGate
}

// OpenSQLitePersistence opens (or creates) a SQLite database at path.
func OpenSQLitePersistence(path string) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLitePersistence{db: db, Logger: slog.Default()}, nil
}

// Save upserts the namespace row.
func (p *SQLitePersistence) Save(namespace string, revision uint64, data map[string]map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.gate.admit(namespace, revision) {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode namespace %s: %w", namespace, err)
	}
	_, err = p.db.Exec(
		`INSERT INTO namespaces (name, revision, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   revision = excluded.revision,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		namespace, int64(revision), string(payload), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save namespace %s: %w", namespace, err)
	}
	return nil
}

// LoadAll reads every namespace row. Rows with corrupt payloads are skipped.
func (p *SQLitePersistence) LoadAll() (map[string]map[string]map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.db.Query(`SELECT name, payload FROM namespaces`)
	if err != nil {
		return nil, fmt.Errorf("query namespaces: %w", err)
	}
	defer rows.Close()

	allData := make(map[string]map[string]map[string]any)
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("scan namespace: %w", err)
		}
		var nsData map[string]map[string]any
		if err := json.Unmarshal([]byte(payload), &nsData); err != nil {
			p.logger().Warn("skip corrupt namespace row", "namespace", name, "error", err)
			continue
		}
		allData[name] = nsData
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate namespaces: %w", err)
	}
	return allData, nil
}

// Close closes the SQLite handle.
func (p *SQLitePersistence) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *SQLitePersistence) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
