// Package tasklist aggregates the task list screen's inputs (the live task
// stream, the persisted filter, a loading flag and a one-shot message) into a
// single view-state that is recomputed whenever any input changes.
package tasklist

import (
	"context"
	"log"

	"todo/pkg/message"
	"todo/pkg/reactive"
	"todo/pkg/savedstate"
	"todo/pkg/task"
)

// FilterKey is the saved-state key holding the selected filter.
const FilterKey = "tasks_filter"

// EditResult is what the add/edit and detail screens report back when they
// finish, so the list can confirm the operation.
type EditResult int

const (
	AddResultOK EditResult = iota + 1
	EditResultOK
	DeleteResultOK
)

// FilteringInfo holds the labels that depend on the selected filter.
type FilteringInfo struct {
	Label        message.Code `json:"label"`
	NoTasksLabel message.Code `json:"no_tasks_label"`
}

// UIState is everything the task list screen renders.
type UIState struct {
	Items       []task.Task   `json:"items"`
	Empty       bool          `json:"empty"`
	IsLoading   bool          `json:"is_loading"`
	Filtering   FilteringInfo `json:"filtering"`
	UserMessage message.Code  `json:"user_message,omitempty"`
}

// ViewModel owns the task list screen's state for the lifetime of the screen.
type ViewModel struct {
	repo  *task.Repository
	saved savedstate.Handle

	filter  *reactive.Value[task.Filter]
	message *reactive.Value[message.Code]
	state   *reactive.Value[UIState]

	// refresh carries pending refresh requests to run, which owns the
	// loading flag.
	refresh chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// New starts a ViewModel. Its subscription ends when ctx is done or Close is called.
func New(ctx context.Context, repo *task.Repository, saved savedstate.Handle) *ViewModel {
	ctx, cancel := context.WithCancel(ctx)
	vm := &ViewModel{
		repo:    repo,
		saved:   saved,
		filter:  reactive.NewValue(savedFilter(saved)),
		message: reactive.NewValue(message.None),
		state:   reactive.NewValue(UIState{IsLoading: true, Filtering: InfoFor(task.FilterAll)}),
		refresh: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go vm.run(ctx)
	return vm
}

func savedFilter(saved savedstate.Handle) task.Filter {
	v, ok := saved.Get(FilterKey)
	if !ok {
		return task.FilterAll
	}
	f, err := task.ParseFilter(v)
	if err != nil {
		log.Printf("tasklist: ignoring saved filter: %v", err)
	}
	return f
}

// run joins the inputs, emitting a new state on every change once the task
// stream has produced its first result. A refresh raises the loading flag
// until the next task list arrives.
func (vm *ViewModel) run(ctx context.Context) {
	defer close(vm.done)

	tasks := vm.repo.StreamTasks(ctx)
	filters, stopFilter := vm.filter.Subscribe()
	defer stopFilter()
	messages, stopMessage := vm.message.Subscribe()
	defer stopMessage()

	var (
		items   []task.Task
		loaded  bool
		failed  bool
		filter  = vm.filter.Get()
		loading bool
		userMsg = vm.message.Get()
	)
	for {
		select {
		case <-ctx.Done():
			return
		case it, ok := <-tasks:
			if !ok {
				tasks = nil
				continue
			}
			if it.Err != nil {
				log.Printf("tasklist: load tasks: %v", it.Err)
				failed = true
			} else {
				items, loaded, loading = it.Value, true, false
			}
		case filter = <-filters:
		case <-vm.refresh:
			loading = true
			_ = vm.repo.Refresh(ctx)
		case userMsg = <-messages:
		}
		if !loaded && !failed {
			continue
		}
		vm.state.Set(combine(items, failed, filter, loading, userMsg))
	}
}

func combine(items []task.Task, failed bool, filter task.Filter, loading bool, userMsg message.Code) UIState {
	if failed {
		return UIState{
			Filtering:   InfoFor(task.FilterAll),
			UserMessage: message.LoadingTasksError,
		}
	}
	filtered := filter.Apply(items)
	return UIState{
		Items:       filtered,
		Empty:       len(filtered) == 0,
		IsLoading:   loading,
		Filtering:   InfoFor(filter),
		UserMessage: userMsg,
	}
}

// InfoFor returns the labels shown for filter f.
func InfoFor(f task.Filter) FilteringInfo {
	switch f {
	case task.FilterActive:
		return FilteringInfo{Label: message.LabelActive, NoTasksLabel: message.NoTasksActive}
	case task.FilterCompleted:
		return FilteringInfo{Label: message.LabelCompleted, NoTasksLabel: message.NoTasksCompleted}
	default:
		return FilteringInfo{Label: message.LabelAll, NoTasksLabel: message.NoTasksAll}
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

// Filter returns the selected filter.
func (vm *ViewModel) Filter() task.Filter {
	return vm.filter.Get()
}

// SetFiltering selects and persists a filter.
func (vm *ViewModel) SetFiltering(f task.Filter) error {
	vm.filter.Set(f)
	return vm.saved.Set(FilterKey, string(f))
}

// MessageShown clears the pending user message.
func (vm *ViewModel) MessageShown() {
	vm.message.Set(message.None)
}

// ShowEditResult shows the confirmation for a finished add, edit or delete.
// Unknown results are ignored.
func (vm *ViewModel) ShowEditResult(r EditResult) {
	switch r {
	case AddResultOK:
		vm.message.Set(message.TaskAdded)
	case EditResultOK:
		vm.message.Set(message.TaskSaved)
	case DeleteResultOK:
		vm.message.Set(message.TaskDeleted)
	}
}

// Refresh asks for the store to be re-read. IsLoading stays set until the
// re-read list arrives. Requests made while one is pending are merged.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case vm.refresh <- struct{}{}:
	default:
	}
	return nil
}

// CompleteTask marks t completed or active and confirms it to the user.
func (vm *ViewModel) CompleteTask(ctx context.Context, t task.Task, completed bool) error {
	if completed {
		if err := vm.repo.Complete(ctx, t.ID); err != nil {
			return err
		}
		vm.message.Set(message.TaskMarkedComplete)
		return nil
	}
	if err := vm.repo.Activate(ctx, t.ID); err != nil {
		return err
	}
	vm.message.Set(message.TaskMarkedActive)
	return nil
}

// ClearCompletedTasks deletes every completed task.
func (vm *ViewModel) ClearCompletedTasks(ctx context.Context) error {
	if _, err := vm.repo.ClearCompleted(ctx); err != nil {
		return err
	}
	vm.message.Set(message.CompletedTasksCleared)
	return vm.Refresh(ctx)
}

// Close ends the screen's subscription and waits for it to stop.
func (vm *ViewModel) Close() {
	vm.cancel()
	<-vm.done
}
