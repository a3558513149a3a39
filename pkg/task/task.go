package task

import (
	"fmt"
	"strings"

	"todo/pkg/store"
)

// ErrNotFound is returned when no task has the requested ID.
var ErrNotFound = store.ErrNotFound

// Task is a single to-do item.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

// TitleForList is the text shown in lists: the title, or the description
// when the title is empty.
func (t Task) TitleForList() string {
	if t.Title == "" {
		return t.Description
	}
	return t.Title
}

// IsActive reports whether the task still needs doing.
func (t Task) IsActive() bool {
	return !t.Completed
}

// Filter selects tasks by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name. Empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q (want all, active or completed)", s)
	}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Apply returns the tasks that pass the filter, preserving order.
func (f Filter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func fromRow(r store.Row) Task {
	return Task{ID: r.ID, Title: r.Title, Description: r.Description, Completed: r.Completed}
}

func fromRows(rows []store.Row) []Task {
	out := make([]Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out
}

func (t Task) row() store.Row {
	return store.Row{ID: t.ID, Title: t.Title, Description: t.Description, Completed: t.Completed}
}
