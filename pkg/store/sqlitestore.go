package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a task store backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
// A leading "~" is expanded to the user's home directory.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; avoids SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *SQLiteStore) EnsureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			completed   BOOLEAN NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed)`)
	return err
}

// All returns every task row.
func (s *SQLiteStore) All(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, completed FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Get retrieves a single task row by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Row, error) {
	var r Row
	err := s.db.QueryRowContext(ctx, `SELECT id, title, description, completed FROM tasks WHERE id = ?`, id).
		Scan(&r.ID, &r.Title, &r.Description, &r.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &r, nil
}

// Upsert inserts or replaces a task row.
func (s *SQLiteStore) Upsert(ctx context.Context, r Row) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, completed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET title = excluded.title, description = excluded.description, completed = excluded.completed`,
		r.ID, r.Title, r.Description, r.Completed)
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", r.ID, err)
	}
	return nil
}

// Update changes the title and description of an existing task.
func (s *SQLiteStore) Update(ctx context.Context, id, title, description string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ? WHERE id = ?`, title, description, id)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	n, err := affected(res)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetCompleted updates the completion flag of a task.
func (s *SQLiteStore) SetCompleted(ctx context.Context, id string, completed bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return fmt.Errorf("set completed %s: %w", id, err)
	}
	return nil
}

// Delete removes a task by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete task %s: %w", id, err)
	}
	return affected(res)
}

// DeleteAll removes every task.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

// DeleteCompleted removes all completed tasks.
func (s *SQLiteStore) DeleteCompleted(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("delete completed tasks: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
