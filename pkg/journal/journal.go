// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// EventType classifies a journal event.
type EventType string

const (
	// EventRegistered records an instance being created and registered.
	EventRegistered EventType = "registered"
	// EventReleased records the owner dropping its strong reference.
	EventReleased EventType = "released"
	// EventResolveMiss records a dispatch against an unknown or reclaimed id.
	EventResolveMiss EventType = "resolve_miss"
	// EventInvoked records a successful operation dispatch.
	EventInvoked EventType = "invoked"
	// EventInvokeFailed records a failed operation dispatch.
	EventInvokeFailed EventType = "invoke_failed"
)

// Event is a single registry lifecycle event.
type Event struct {
	Type       EventType `json:"type" yaml:"type"`
	InstanceID string    `json:"instanceId" yaml:"instanceId"`
	Kind       string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Detail     string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// Journal persists registry lifecycle events to a SQLite database for
// post-hoc leak triage: which instances were created, when their owners
// released them, and which identifiers kept getting dispatched to after
// reclamation.
//
// A nil *Journal is valid and drops all events, so callers never need to
// branch on whether journaling is enabled.
type Journal struct {
	db         *sql.DB
	insertStmt *sql.Stmt
	mu         sync.RWMutex
}

// Open opens (and initializes) the journal database at the given path.
func Open(path string) (*Journal, error) {
	if path == "" {
		path = "mneme_journal.db"
	}

	if dir := filepath.Dir(filepath.Clean(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := bootstrap(db); err != nil {
		db.Close()
		return nil, err
	}

	insertStmt, err := db.Prepare(`INSERT INTO events (type, instance_id, kind, detail, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return &Journal{db: db, insertStmt: insertStmt}, nil
}

func bootstrap(db *sql.DB) error {
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return fmt.Errorf("failed to configure database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			instance_id TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_instance ON events(instance_id);
		CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	return nil
}

// Record persists a single event. The event timestamp is assigned here if
// unset. Recording on a nil journal is a no-op.
func (j *Journal) Record(ctx context.Context, e Event) error {
	if j == nil {
		return nil
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.insertStmt.ExecContext(ctx, string(e.Type), e.InstanceID, e.Kind, e.Detail, e.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Event, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.QueryContext(ctx,
		`SELECT type, instance_id, kind, detail, created_at FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			ts int64
		)
		if err := rows.Scan((*string)(&e.Type), &e.InstanceID, &e.Kind, &e.Detail, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.CreatedAt = time.Unix(0, ts).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// Summary returns the number of recorded events per type.
func (j *Journal) Summary(ctx context.Context) (map[EventType]int, error) {
	if j == nil {
		return nil, nil
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query event summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[EventType]int)
	for rows.Next() {
		var (
			typ   string
			count int
		)
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[EventType(typ)] = count
	}
	return summary, rows.Err()
}

// Close releases the underlying database resources.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.insertStmt != nil {
		j.insertStmt.Close()
	}
	return j.db.Close()
}
