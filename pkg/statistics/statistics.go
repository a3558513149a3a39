// Package statistics computes the active/completed breakdown of the task list.
package statistics

import (
	"context"
	"log"

	"todo/pkg/message"
	"todo/pkg/reactive"
	"todo/pkg/task"
)

// Result holds the share of active and completed tasks, in percent.
type Result struct {
	ActivePercent    float64 `json:"active_percent"`
	CompletedPercent float64 `json:"completed_percent"`
}

// Calculate returns the active and completed percentages of tasks.
// An empty list yields zero for both.
func Calculate(tasks []task.Task) Result {
	if len(tasks) == 0 {
		return Result{}
	}
	active := 0
	for _, t := range tasks {
		if t.IsActive() {
			active++
		}
	}
	total := float64(len(tasks))
	return Result{
		ActivePercent:    100 * float64(active) / total,
		CompletedPercent: 100 * float64(len(tasks)-active) / total,
	}
}

// Status is the phase of the statistics screen.
type Status string

const (
	StatusLoading Status = "loading"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// UIState is everything the statistics screen renders. Data is only
// meaningful when Status is StatusSuccess.
type UIState struct {
	Status      Status       `json:"status"`
	Data        Result       `json:"data"`
	UserMessage message.Code `json:"user_message,omitempty"`
}

// ViewModel keeps the statistics screen in sync with the task list.
type ViewModel struct {
	repo   *task.Repository
	state  *reactive.Value[UIState]
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts a ViewModel. Its subscription ends when ctx is done or Close is called.
func New(ctx context.Context, repo *task.Repository) *ViewModel {
	ctx, cancel := context.WithCancel(ctx)
	vm := &ViewModel{
		repo:   repo,
		state:  reactive.NewValue(UIState{Status: StatusLoading}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go vm.run(ctx)
	return vm
}

func (vm *ViewModel) run(ctx context.Context) {
	defer close(vm.done)
	for it := range vm.repo.StreamTasks(ctx) {
		if it.Err != nil {
			log.Printf("statistics: load tasks: %v", it.Err)
			vm.state.Set(UIState{Status: StatusError, UserMessage: message.LoadingTasksError})
			return
		}
		if len(it.Value) == 0 {
			vm.state.Set(UIState{Status: StatusEmpty})
			continue
		}
		vm.state.Set(UIState{Status: StatusSuccess, Data: Calculate(it.Value)})
	}
}

// State returns the current view-state.
func (vm *ViewModel) State() UIState {
	return vm.state.Get()
}

// Subscribe yields the current view-state and every later one.
func (vm *ViewModel) Subscribe() (<-chan UIState, func()) {
	return vm.state.Subscribe()
}

// Refresh re-reads the store.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	return vm.repo.Refresh(ctx)
}

// Close ends the screen's subscription and waits for it to stop.
func (vm *ViewModel) Close() {
	vm.cancel()
	<-vm.done
}
