package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			completed   BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed)`)
	return err
}

// All returns every task row.
func (s *PgStore) All(ctx context.Context) ([]Row, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, description, completed FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Get retrieves a single task row by ID.
func (s *PgStore) Get(ctx context.Context, id string) (*Row, error) {
	var r Row
	err := s.pool.QueryRow(ctx, `SELECT id, title, description, completed FROM tasks WHERE id = $1`, id).
		Scan(&r.ID, &r.Title, &r.Description, &r.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &r, nil
}

// Upsert inserts or replaces a task row.
func (s *PgStore) Upsert(ctx context.Context, r Row) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, completed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, description = EXCLUDED.description, completed = EXCLUDED.completed`,
		r.ID, r.Title, r.Description, r.Completed)
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", r.ID, err)
	}
	return nil
}

// Update changes the title and description of an existing task.
func (s *PgStore) Update(ctx context.Context, id, title, description string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE tasks SET title = $1, description = $2 WHERE id = $3`, title, description, id)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetCompleted updates the completion flag of a task.
func (s *PgStore) SetCompleted(ctx context.Context, id string, completed bool) error {
	_, err := s.pool.Exec(ctx, `UPDATE tasks SET completed = $1 WHERE id = $2`, completed, id)
	if err != nil {
		return fmt.Errorf("set completed %s: %w", id, err)
	}
	return nil
}

// Delete removes a task by ID.
func (s *PgStore) Delete(ctx context.Context, id string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete task %s: %w", id, err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteAll removes every task.
func (s *PgStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

// DeleteCompleted removes all completed tasks.
func (s *PgStore) DeleteCompleted(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE completed`)
	if err != nil {
		return 0, fmt.Errorf("delete completed tasks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Completed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}
