package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"todo/pkg/savedstate"
	"todo/pkg/task"
	"todo/pkg/tasklist"
)

// handleTaskStream pushes the task list view-state as server-sent events.
// Each connection is its own list screen: the subscription lives exactly as
// long as the request.
func (s *Server) handleTaskStream(w http.ResponseWriter, r *http.Request) {
	filter, err := task.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, 500, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush()

	ctx := r.Context()
	saved := savedstate.NewMemory()
	_ = saved.Set(tasklist.FilterKey, string(filter))
	vm := tasklist.New(ctx, s.repo, saved)
	defer vm.Close()

	states, cancel := vm.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-states:
			data, err := json.Marshal(st)
			if err != nil {
				log.Printf("SSE encode: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
