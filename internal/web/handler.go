// Package web serves the snapshot inspection API: stored task-tree
// snapshots and their run logs, plus ingestion of serialized trees
// produced elsewhere.
package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gantrydev/gantry/internal/storage"
	"github.com/gantrydev/gantry/task"
)

// Store is the subset of the snapshot store the handler needs.
type Store interface {
	ListSnapshots() ([]storage.Snapshot, error)
	GetSnapshot(id string) (*storage.Snapshot, error)
	LatestSnapshotForTask(taskName string) (*storage.Snapshot, error)
	GetRunLogs(snapshotID string) ([]storage.RunLog, error)
	SaveSnapshot(root task.TaskLike, finalised bool) (string, error)
}

// securityHeadersMiddleware adds standard security headers to all responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// NewHandler creates the http.Handler for the inspection API.
func NewHandler(store Store) http.Handler {
	h := &handler{store: store}

	r := chi.NewRouter()
	r.Use(securityHeadersMiddleware)

	r.Get("/api/health", h.health)
	r.Get("/api/snapshots", h.listSnapshots)
	r.Post("/api/snapshots", h.ingestSnapshot)
	r.Get("/api/snapshots/{id}", h.getSnapshot)
	r.Get("/api/snapshots/{id}/logs", h.getRunLogs)
	r.Get("/api/tasks/{name}/latest", h.latestForTask)

	return r
}

type handler struct {
	store Store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[web] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.store.ListSnapshots()
	if err != nil {
		log.Printf("[web] list snapshots: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if snaps == nil {
		snaps = []storage.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.store.GetSnapshot(id)
	if err != nil {
		log.Printf("[web] get snapshot %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get snapshot")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handler) latestForTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap, err := h.store.LatestSnapshotForTask(name)
	if err != nil {
		log.Printf("[web] latest snapshot for %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to get snapshot")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no snapshot for task")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handler) getRunLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.store.GetSnapshot(id)
	if err != nil {
		log.Printf("[web] get snapshot %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get snapshot")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	logs, err := h.store.GetRunLogs(id)
	if err != nil {
		log.Printf("[web] get run logs %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get run logs")
		return
	}
	if logs == nil {
		logs = []storage.RunLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// ingestSnapshot accepts a serialized task tree, validates it by running
// it through reconstruction, and stores it.
func (h *handler) ingestSnapshot(w http.ResponseWriter, r *http.Request) {
	var root task.TaskLike
	if err := json.NewDecoder(r.Body).Decode(&root); err != nil {
		writeError(w, http.StatusBadRequest, "invalid snapshot body")
		return
	}

	factory := task.NewFactory(nil, task.DefaultOptions())
	rebuilt, err := factory.ReconstructTasksFromRootTaskLike(root, nil)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := h.store.SaveSnapshot(root, rebuilt.Finalised())
	if err != nil {
		log.Printf("[web] save snapshot: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
