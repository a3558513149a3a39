package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/pkg/store"
	"todo/pkg/task"
)

func newTestServer(t *testing.T) (*Server, *task.Repository) {
	t.Helper()
	repo := task.NewRepository(store.NewBus(store.NewMemStore()))
	return New(repo), repo
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetTask(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, "POST", "/api/tasks", `{"title":"Buy milk","description":"2 litres"}`)
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Completed)

	rec = do(t, s, "GET", "/api/tasks/"+created.ID, "")
	require.Equal(t, 200, rec.Code)
	var got task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)
}

func TestCreateRejectsBlankFields(t *testing.T) {
	s, repo := newTestServer(t)

	rec := do(t, s, "POST", "/api/tasks", `{"title":"","description":"x"}`)
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tasks cannot be empty")

	rec = do(t, s, "POST", "/api/tasks", `not json`)
	assert.Equal(t, 400, rec.Code)

	tasks, err := repo.Tasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUpdateTask(t *testing.T) {
	s, repo := newTestServer(t)
	id, err := repo.Create(context.Background(), "a", "b")
	require.NoError(t, err)

	rec := do(t, s, "PUT", "/api/tasks/"+id, `{"title":"c","description":"d"}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"c"`)

	rec = do(t, s, "PUT", "/api/tasks/missing", `{"title":"c","description":"d"}`)
	assert.Equal(t, 404, rec.Code)
}

func TestCompleteActivateAndFilter(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	a, _ := repo.Create(ctx, "a", "a")
	_, _ = repo.Create(ctx, "b", "b")

	rec := do(t, s, "POST", "/api/tasks/"+a+"/complete", "")
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completed":true`)

	var list []task.Task
	rec = do(t, s, "GET", "/api/tasks?filter=completed", "")
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, a, list[0].ID)

	rec = do(t, s, "GET", "/api/tasks?filter=active", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(t, s, "GET", "/api/tasks?filter=bogus", "")
	assert.Equal(t, 400, rec.Code)

	rec = do(t, s, "POST", "/api/tasks/"+a+"/activate", "")
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completed":false`)

	rec = do(t, s, "POST", "/api/tasks/missing/complete", "")
	assert.Equal(t, 404, rec.Code)
}

func TestDeleteEndpoints(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	a, _ := repo.Create(ctx, "a", "a")
	b, _ := repo.Create(ctx, "b", "b")
	_, _ = repo.Create(ctx, "c", "c")
	require.NoError(t, repo.Complete(ctx, b))

	rec := do(t, s, "POST", "/api/tasks/clear-completed", "")
	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())

	rec = do(t, s, "DELETE", "/api/tasks/"+a, "")
	assert.Equal(t, 204, rec.Code)

	rec = do(t, s, "DELETE", "/api/tasks", "")
	assert.Equal(t, 204, rec.Code)

	tasks, err := repo.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStatistics(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()

	rec := do(t, s, "GET", "/api/statistics", "")
	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"total":0,"active_percent":0,"completed_percent":0}`, rec.Body.String())

	ids := make([]string, 5)
	for i := range ids {
		ids[i], _ = repo.Create(ctx, "t", "d")
	}
	for _, id := range ids[2:] {
		require.NoError(t, repo.Complete(ctx, id))
	}
	rec = do(t, s, "GET", "/api/statistics", "")
	assert.JSONEq(t, `{"total":5,"active_percent":40,"completed_percent":60}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "GET", "/health", "")
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTaskStream(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	_, _ = repo.Create(ctx, "first", "d")

	srv := httptest.NewServer(s)
	defer srv.Close()

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, "GET", srv.URL+"/api/tasks/stream?filter=active", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan map[string]any)
	go func() {
		defer close(events)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			line := sc.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var st map[string]any
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &st) == nil {
				events <- st
			}
		}
	}()

	// wait until the loaded list with the first task arrives
	waitItems := func(n int) {
		t.Helper()
		for st := range events {
			items, _ := st["items"].([]any)
			if st["is_loading"] == false && len(items) == n {
				return
			}
		}
		t.Fatalf("stream ended before %d items arrived", n)
	}
	waitItems(1)

	_, err = repo.Create(ctx, "second", "d")
	require.NoError(t, err)
	waitItems(2)
}
