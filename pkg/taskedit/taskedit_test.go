package taskedit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/pkg/message"
	"todo/pkg/store"
	"todo/pkg/task"
)

func newRepo() *task.Repository {
	return task.NewRepository(store.NewBus(store.NewMemStore()))
}

func awaitLoaded(t *testing.T, vm *ViewModel) UIState {
	t.Helper()
	ch, cancel := vm.Subscribe()
	defer cancel()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if !s.IsLoading {
				return s
			}
		case <-timeout:
			t.Fatal("task never loaded")
		}
	}
}

func TestSaveNewTask(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	vm := New(ctx, repo, "")
	defer vm.Close()
	assert.True(t, vm.IsNew())
	assert.False(t, vm.State().IsLoading)

	vm.OnTitleChanged("Title")
	vm.OnDescriptionChanged("Description")
	require.NoError(t, vm.SaveTask(ctx))
	assert.True(t, vm.State().IsTaskSaved)

	tasks, err := repo.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Title", tasks[0].Title)
	assert.Equal(t, "Description", tasks[0].Description)
	assert.False(t, tasks[0].Completed)
}

func TestSaveRejectsBlankFields(t *testing.T) {
	tests := []struct {
		name, title, description string
	}{
		{"blank title", "  ", "Description"},
		{"blank description", "Title", ""},
		{"both blank", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()
			vm := New(ctx, repo, "")
			defer vm.Close()

			vm.OnTitleChanged(tt.title)
			vm.OnDescriptionChanged(tt.description)
			require.NoError(t, vm.SaveTask(ctx))

			s := vm.State()
			assert.Equal(t, message.EmptyTask, s.UserMessage)
			assert.False(t, s.IsTaskSaved)
			tasks, _ := repo.Tasks(ctx)
			assert.Empty(t, tasks)

			vm.MessageShown()
			assert.Equal(t, message.None, vm.State().UserMessage)
		})
	}
}

func TestEditExistingTask(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	id, err := repo.Create(ctx, "Old", "Old description")
	require.NoError(t, err)

	vm := New(ctx, repo, id)
	defer vm.Close()
	s := awaitLoaded(t, vm)
	assert.Equal(t, "Old", s.Title)
	assert.Equal(t, "Old description", s.Description)

	vm.OnTitleChanged("New")
	require.NoError(t, vm.SaveTask(ctx))
	assert.True(t, vm.State().IsTaskSaved)

	got, err := repo.Task(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "Old description", got.Description)
}

func TestLoadMissingTask(t *testing.T) {
	vm := New(context.Background(), newRepo(), "missing")
	defer vm.Close()

	s := awaitLoaded(t, vm)
	assert.Equal(t, message.TaskNotFound, s.UserMessage)
}

func TestSaveDeletedTaskFails(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	id, err := repo.Create(ctx, "Title", "Description")
	require.NoError(t, err)

	vm := New(ctx, repo, id)
	defer vm.Close()
	awaitLoaded(t, vm)

	require.NoError(t, repo.Delete(ctx, id))
	err = vm.SaveTask(ctx)
	assert.ErrorIs(t, err, task.ErrNotFound)
	assert.False(t, vm.State().IsTaskSaved)

	tasks, _ := repo.Tasks(ctx)
	assert.Empty(t, tasks)
}
