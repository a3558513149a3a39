package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/pkg/message"
	"todo/pkg/store"
	"todo/pkg/task"
)

func tasksWith(active, completed int) []task.Task {
	var out []task.Task
	for i := 0; i < active; i++ {
		out = append(out, task.Task{Title: "a"})
	}
	for i := 0; i < completed; i++ {
		out = append(out, task.Task{Title: "c", Completed: true})
	}
	return out
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name              string
		active, completed int
		want              Result
	}{
		{"empty list", 0, 0, Result{0, 0}},
		{"no completed", 1, 0, Result{100, 0}},
		{"no active", 0, 3, Result{0, 100}},
		{"two of five active", 2, 3, Result{40, 60}},
		{"one of four completed", 3, 1, Result{75, 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tasksWith(tt.active, tt.completed))
			assert.InDelta(t, tt.want.ActivePercent, got.ActivePercent, 1e-9)
			assert.InDelta(t, tt.want.CompletedPercent, got.CompletedPercent, 1e-9)
		})
	}
}

func await(t *testing.T, vm *ViewModel, ok func(UIState) bool) UIState {
	t.Helper()
	ch, cancel := vm.Subscribe()
	defer cancel()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if ok(s) {
				return s
			}
		case <-timeout:
			t.Fatalf("state never matched; last: %+v", vm.State())
		}
	}
}

func TestViewModelEmptyThenSuccess(t *testing.T) {
	ctx := context.Background()
	repo := task.NewRepository(store.NewBus(store.NewMemStore()))
	vm := New(ctx, repo)
	defer vm.Close()

	await(t, vm, func(s UIState) bool { return s.Status == StatusEmpty })

	id, err := repo.Create(ctx, "a", "b")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "c", "d")
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, id))

	s := await(t, vm, func(s UIState) bool { return s.Status == StatusSuccess && s.Data.CompletedPercent == 50 })
	assert.Equal(t, Result{ActivePercent: 50, CompletedPercent: 50}, s.Data)
}

type brokenStore struct{ *store.MemStore }

func (brokenStore) All(context.Context) ([]store.Row, error) { return nil, errors.New("nope") }

func TestViewModelError(t *testing.T) {
	repo := task.NewRepository(store.NewBus(brokenStore{store.NewMemStore()}))
	vm := New(context.Background(), repo)
	defer vm.Close()

	s := await(t, vm, func(s UIState) bool { return s.Status == StatusError })
	assert.Equal(t, message.LoadingTasksError, s.UserMessage)
}

func TestRefreshPicksUpOutsideWrites(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemStore()
	require.NoError(t, mem.Upsert(ctx, store.Row{ID: "1", Title: "a", Description: "a"}))
	vm := New(ctx, task.NewRepository(store.NewBus(mem)))
	defer vm.Close()

	s := await(t, vm, func(s UIState) bool { return s.Status == StatusSuccess })
	assert.Equal(t, Result{100, 0}, s.Data)

	// Written behind the bus, so only a refresh notices it.
	require.NoError(t, mem.Upsert(ctx, store.Row{ID: "2", Title: "b", Description: "b", Completed: true}))
	require.NoError(t, vm.Refresh(ctx))

	s = await(t, vm, func(s UIState) bool { return s.Data.CompletedPercent > 0 })
	assert.Equal(t, Result{50, 50}, s.Data)
}
