package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"todo/pkg/message"
	"todo/pkg/statistics"
	"todo/pkg/task"
	"todo/pkg/taskedit"
)

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	filter, err := task.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	tasks, err := s.repo.Tasks(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, filter.Apply(tasks))
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Task(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if code := taskedit.Validate(req.Title, req.Description); code != message.None {
		writeError(w, 400, code.String())
		return
	}
	id, err := s.repo.Create(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 201, task.Task{ID: id, Title: req.Title, Description: req.Description})
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if code := taskedit.Validate(req.Title, req.Description); code != message.None {
		writeError(w, 400, code.String())
		return
	}
	if err := s.repo.Update(r.Context(), id, req.Title, req.Description); err != nil {
		writeRepoError(w, err)
		return
	}
	t, err := s.repo.Task(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, true)
}

func (s *Server) handleTaskActivate(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, false)
}

func (s *Server) setCompleted(w http.ResponseWriter, r *http.Request, completed bool) {
	ctx := r.Context()
	id := r.PathValue("id")
	// completion on a missing task is a silent no-op in the store; report it here
	if _, err := s.repo.Task(ctx, id); err != nil {
		writeRepoError(w, err)
		return
	}
	var err error
	if completed {
		err = s.repo.Complete(ctx, id)
	} else {
		err = s.repo.Activate(ctx, id)
	}
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	t, err := s.repo.Task(ctx, id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	w.WriteHeader(204)
}

func (s *Server) handleTaskDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteAll(r.Context()); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	w.WriteHeader(204)
}

func (s *Server) handleTaskClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.repo.ClearCompleted(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]int{"deleted": n})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.repo.Tasks(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	res := statistics.Calculate(tasks)
	writeJSON(w, 200, map[string]any{
		"total":             len(tasks),
		"active_percent":    res.ActivePercent,
		"completed_percent": res.CompletedPercent,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, task.ErrNotFound) {
		writeError(w, 404, err.Error())
		return
	}
	writeError(w, 500, err.Error())
}
