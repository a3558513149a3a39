// Package task holds the to-do domain record and the repository that maps
// store rows to it.
package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"todo/pkg/reactive"
	"todo/pkg/store"
)

// Source is the live store a Repository reads from. *store.Bus satisfies it.
type Source interface {
	store.Store
	ObserveAll(ctx context.Context) <-chan reactive.Item[[]store.Row]
	ObserveByID(ctx context.Context, id string) <-chan reactive.Item[*store.Row]
	Notify()
}

// Repository exposes task CRUD and live reads. It adds no caching or retries.
type Repository struct {
	src Source
}

// NewRepository creates a Repository over src.
func NewRepository(src Source) *Repository {
	return &Repository{src: src}
}

// StreamTasks emits all tasks now and after every change.
func (r *Repository) StreamTasks(ctx context.Context) <-chan reactive.Item[[]Task] {
	return reactive.Map(ctx, r.src.ObserveAll(ctx), fromRows)
}

// StreamTask emits one task now and after every change; nil when it doesn't exist.
func (r *Repository) StreamTask(ctx context.Context, id string) <-chan reactive.Item[*Task] {
	return reactive.Map(ctx, r.src.ObserveByID(ctx, id), func(row *store.Row) *Task {
		if row == nil {
			return nil
		}
		t := fromRow(*row)
		return &t
	})
}

// Tasks returns all tasks.
func (r *Repository) Tasks(ctx context.Context) ([]Task, error) {
	rows, err := r.src.All(ctx)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// Task returns one task, or an error wrapping ErrNotFound.
func (r *Repository) Task(ctx context.Context, id string) (*Task, error) {
	row, err := r.src.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t := fromRow(*row)
	return &t, nil
}

// Create stores a new active task and returns its ID.
func (r *Repository) Create(ctx context.Context, title, description string) (string, error) {
	t := Task{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Title:       title,
		Description: description,
	}
	if err := r.src.Upsert(ctx, t.row()); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return t.ID, nil
}

// Update replaces the title and description of an existing task. It fails
// with ErrNotFound, writing nothing, when the task doesn't exist.
func (r *Repository) Update(ctx context.Context, id, title, description string) error {
	return r.src.Update(ctx, id, title, description)
}

// Complete marks a task completed.
func (r *Repository) Complete(ctx context.Context, id string) error {
	return r.src.SetCompleted(ctx, id, true)
}

// Activate marks a task active again.
func (r *Repository) Activate(ctx context.Context, id string) error {
	return r.src.SetCompleted(ctx, id, false)
}

// Delete removes one task.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.src.Delete(ctx, id)
	return err
}

// DeleteAll removes every task.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.src.DeleteAll(ctx)
}

// ClearCompleted removes completed tasks and reports how many were removed.
func (r *Repository) ClearCompleted(ctx context.Context) (int, error) {
	return r.src.DeleteCompleted(ctx)
}

// Refresh makes every open stream re-read the store.
func (r *Repository) Refresh(ctx context.Context) error {
	r.src.Notify()
	return ctx.Err()
}

// RefreshTask makes open streams re-read the store. The whole table is
// re-read; there is no per-row invalidation.
func (r *Repository) RefreshTask(ctx context.Context, id string) error {
	return r.Refresh(ctx)
}
