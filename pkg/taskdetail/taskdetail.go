// Package taskdetail holds the state of the screen showing a single task.
package taskdetail

import (
	"context"
	"log"

	"todo/pkg/message"
	"todo/pkg/reactive"
	"todo/pkg/task"
)

// UIState is everything the detail screen renders. IsTaskDeleted is set once
// the task has been deleted and the screen should close.
type UIState struct {
	Task          *task.Task   `json:"task"`
	IsLoading     bool         `json:"is_loading"`
	UserMessage   message.Code `json:"user_message,omitempty"`
	IsTaskDeleted bool         `json:"is_task_deleted"`
}

// ViewModel follows one task for the lifetime of the detail screen.
type ViewModel struct {
	repo   *task.Repository
	taskID string
	state  *reactive.Value[UIState]
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts following taskID. The subscription ends when ctx is done or
// Close is called.
func New(ctx context.Context, repo *task.Repository, taskID string) *ViewModel {
	ctx, cancel := context.WithCancel(ctx)
	vm := &ViewModel{
		repo:   repo,
		taskID: taskID,
		state:  reactive.NewValue(UIState{IsLoading: true}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go vm.run(ctx)
	return vm
}

func (vm *ViewModel) run(ctx context.Context) {
	defer close(vm.done)
	for it := range vm.repo.StreamTask(ctx, vm.taskID) {
		switch {
		case it.Err != nil:
			log.Printf("taskdetail: load task %s: %v", vm.taskID, it.Err)
			vm.state.Update(func(s UIState) UIState {
				s.IsLoading = false
				s.UserMessage = message.LoadingTaskError
				return s
			})
		case it.Value == nil:
			vm.state.Update(func(s UIState) UIState {
				s.IsLoading = false
				s.UserMessage = message.TaskNotFound
				return s
			})
		default:
			t := *it.Value
			vm.state.Update(func(s UIState) UIState {
				s.IsLoading = false
				s.Task = &t
				return s
			})
		}
	}
}

// TaskID returns the ID of the task this screen shows.
func (vm *ViewModel) TaskID() string {
	return vm.taskID
}

// State returns the current view-state.
func (vm *ViewModel) State() UIState {
	return vm.state.Get()
}

// Subscribe yields the current view-state and every later one.
func (vm *ViewModel) Subscribe() (<-chan UIState, func()) {
	return vm.state.Subscribe()
}

// DeleteTask deletes the task and flags the screen for closing.
func (vm *ViewModel) DeleteTask(ctx context.Context) error {
	if err := vm.repo.Delete(ctx, vm.taskID); err != nil {
		return err
	}
	vm.state.Update(func(s UIState) UIState {
		s.IsTaskDeleted = true
		return s
	})
	return nil
}

// OnTaskChecked marks the task completed or active and confirms it.
func (vm *ViewModel) OnTaskChecked(ctx context.Context, checked bool) error {
	setCompleted, msg := vm.repo.Activate, message.TaskMarkedActive
	if checked {
		setCompleted, msg = vm.repo.Complete, message.TaskMarkedComplete
	}
	if err := setCompleted(ctx, vm.taskID); err != nil {
		return err
	}
	vm.state.Update(func(s UIState) UIState {
		s.UserMessage = msg
		return s
	})
	return nil
}

// MessageShown clears the pending user message.
func (vm *ViewModel) MessageShown() {
	vm.state.Update(func(s UIState) UIState {
		s.UserMessage = message.None
		return s
	})
}

// Refresh re-reads the task.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	return vm.repo.RefreshTask(ctx, vm.taskID)
}

// Close ends the screen's subscription and waits for it to stop.
func (vm *ViewModel) Close() {
	vm.cancel()
	<-vm.done
}
