// Package api serves the task list over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"todo/pkg/task"
)

// Server is the HTTP API server.
type Server struct {
	repo *task.Repository
	mux  *http.ServeMux
}

// New creates a new Server.
func New(repo *task.Repository) *Server {
	s := &Server{
		repo: repo,
		mux:  http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Tasks
	s.mux.HandleFunc("GET /api/tasks", s.handleTaskList)
	s.mux.HandleFunc("POST /api/tasks", s.handleTaskCreate)
	s.mux.HandleFunc("DELETE /api/tasks", s.handleTaskDeleteAll)
	s.mux.HandleFunc("GET /api/tasks/stream", s.handleTaskStream)
	s.mux.HandleFunc("POST /api/tasks/clear-completed", s.handleTaskClearCompleted)
	s.mux.HandleFunc("GET /api/tasks/{id}", s.handleTaskGet)
	s.mux.HandleFunc("PUT /api/tasks/{id}", s.handleTaskUpdate)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleTaskDelete)
	s.mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleTaskComplete)
	s.mux.HandleFunc("POST /api/tasks/{id}/activate", s.handleTaskActivate)

	// Statistics
	s.mux.HandleFunc("GET /api/statistics", s.handleStatistics)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
