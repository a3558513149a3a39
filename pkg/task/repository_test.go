package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/pkg/store"
)

func newRepo() *Repository {
	return NewRepository(store.NewBus(store.NewMemStore()))
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	id, err := repo.Create(ctx, "Title", "Description")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := repo.Task(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Task{ID: id, Title: "Title", Description: "Description"}, *got)

	id2, err := repo.Create(ctx, "Title", "Description")
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestUpdateUnknownIDDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	_, err := repo.Create(ctx, "a", "b")
	require.NoError(t, err)
	before, err := repo.Tasks(ctx)
	require.NoError(t, err)

	err = repo.Update(ctx, "nope", "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := repo.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// staleStore answers Get with a row that has already been deleted.
type staleStore struct{ *store.MemStore }

func (staleStore) Get(_ context.Context, id string) (*store.Row, error) {
	return &store.Row{ID: id, Title: "gone", Description: "gone"}, nil
}

func TestUpdateDoesNotResurrectDeletedTask(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewBus(staleStore{store.NewMemStore()}))

	err := repo.Update(ctx, "deleted", "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)

	tasks, err := repo.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUpdateKeepsCompletion(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	id, err := repo.Create(ctx, "a", "b")
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, id))

	require.NoError(t, repo.Update(ctx, id, "c", "d"))
	got, err := repo.Task(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Task{ID: id, Title: "c", Description: "d", Completed: true}, *got)
}

func TestCompletionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	id, err := repo.Create(ctx, "a", "b")
	require.NoError(t, err)

	require.NoError(t, repo.Complete(ctx, id))
	once, _ := repo.Tasks(ctx)
	require.NoError(t, repo.Complete(ctx, id))
	twice, _ := repo.Tasks(ctx)
	assert.Equal(t, once, twice)

	require.NoError(t, repo.Activate(ctx, id))
	require.NoError(t, repo.Activate(ctx, id))
	got, err := repo.Task(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestDeleteOperations(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	a, _ := repo.Create(ctx, "a", "a")
	b, _ := repo.Create(ctx, "b", "b")
	c, _ := repo.Create(ctx, "c", "c")
	require.NoError(t, repo.Complete(ctx, b))
	require.NoError(t, repo.Complete(ctx, c))

	n, err := repo.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, a))
	_, err = repo.Task(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _ = repo.Create(ctx, "d", "d")
	require.NoError(t, repo.DeleteAll(ctx))
	all, err := repo.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStreamTasksMapsRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := newRepo()

	stream := repo.StreamTasks(ctx)
	first := <-stream
	require.NoError(t, first.Err)
	assert.Empty(t, first.Value)

	id, err := repo.Create(ctx, "t", "d")
	require.NoError(t, err)

	select {
	case it := <-stream:
		require.NoError(t, it.Err)
		assert.Equal(t, []Task{{ID: id, Title: "t", Description: "d"}}, it.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("no emission after create")
	}
}

func TestStreamTaskNilWhenMissing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := newRepo()

	it := <-repo.StreamTask(ctx, "missing")
	require.NoError(t, it.Err)
	assert.Nil(t, it.Value)
}
