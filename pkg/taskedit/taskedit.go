// Package taskedit holds the state of the add/edit task screen.
package taskedit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"todo/pkg/message"
	"todo/pkg/reactive"
	"todo/pkg/task"
)

// UIState is everything the add/edit screen renders. IsTaskSaved is set once
// the task has been stored and the screen should close.
type UIState struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	IsLoading   bool         `json:"is_loading"`
	UserMessage message.Code `json:"user_message,omitempty"`
	IsTaskSaved bool         `json:"is_task_saved"`
}

// ViewModel edits one task. An empty task ID means a new task.
type ViewModel struct {
	repo   *task.Repository
	taskID string
	state  *reactive.Value[UIState]
	cancel context.CancelFunc
	done   chan struct{}
}

// New opens the screen. With a task ID the task is loaded in the background;
// until then IsLoading is set.
func New(ctx context.Context, repo *task.Repository, taskID string) *ViewModel {
	ctx, cancel := context.WithCancel(ctx)
	vm := &ViewModel{
		repo:   repo,
		taskID: taskID,
		state:  reactive.NewValue(UIState{IsLoading: taskID != ""}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if taskID == "" {
		close(vm.done)
		return vm
	}
	go vm.load(ctx)
	return vm
}

func (vm *ViewModel) load(ctx context.Context) {
	defer close(vm.done)
	t, err := vm.repo.Task(ctx, vm.taskID)
	if ctx.Err() != nil {
		return
	}
	vm.state.Update(func(s UIState) UIState {
		s.IsLoading = false
		switch {
		case errors.Is(err, task.ErrNotFound):
			s.UserMessage = message.TaskNotFound
		case err != nil:
			log.Printf("taskedit: load task %s: %v", vm.taskID, err)
			s.UserMessage = message.LoadingTaskError
		default:
			s.Title = t.Title
			s.Description = t.Description
		}
		return s
	})
}

// IsNew reports whether the screen creates a task rather than editing one.
func (vm *ViewModel) IsNew() bool {
	return vm.taskID == ""
}

// State returns the current view-state.
func (vm *ViewModel) State() UIState {
	return vm.state.Get()
}

// Subscribe yields the current view-state and every later one.
func (vm *ViewModel) Subscribe() (<-chan UIState, func()) {
	return vm.state.Subscribe()
}

// OnTitleChanged records the edited title.
func (vm *ViewModel) OnTitleChanged(title string) {
	vm.state.Update(func(s UIState) UIState {
		s.Title = title
		return s
	})
}

// OnDescriptionChanged records the edited description.
func (vm *ViewModel) OnDescriptionChanged(description string) {
	vm.state.Update(func(s UIState) UIState {
		s.Description = description
		return s
	})
}

// SaveTask stores the task. Blank title or description only raises
// message.EmptyTask. Updating a task that no longer exists returns an error
// wrapping task.ErrNotFound and leaves the state untouched.
func (vm *ViewModel) SaveTask(ctx context.Context) error {
	s := vm.state.Get()
	if code := Validate(s.Title, s.Description); code != message.None {
		vm.state.Update(func(s UIState) UIState {
			s.UserMessage = code
			return s
		})
		return nil
	}

	if vm.IsNew() {
		if _, err := vm.repo.Create(ctx, s.Title, s.Description); err != nil {
			return err
		}
	} else if err := vm.repo.Update(ctx, vm.taskID, s.Title, s.Description); err != nil {
		return fmt.Errorf("save task %s: %w", vm.taskID, err)
	}

	vm.state.Update(func(s UIState) UIState {
		s.IsTaskSaved = true
		return s
	})
	return nil
}

// Validate returns message.EmptyTask when title or description is blank,
// message.None otherwise.
func Validate(title, description string) message.Code {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return message.EmptyTask
	}
	return message.None
}

// MessageShown clears the pending user message.
func (vm *ViewModel) MessageShown() {
	vm.state.Update(func(s UIState) UIState {
		s.UserMessage = message.None
		return s
	})
}

// Close abandons a pending load and waits for it to stop.
func (vm *ViewModel) Close() {
	vm.cancel()
	<-vm.done
}
