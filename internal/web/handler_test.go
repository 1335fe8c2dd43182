package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gantrydev/gantry/internal/storage"
	"github.com/gantrydev/gantry/task"
)

func newTestHandler(t *testing.T) (http.Handler, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHandler(db), db
}

func sampleRoot() task.TaskLike {
	return task.TaskLike{
		Name:     "pipeline",
		State:    task.StateLike{Name: task.NameSucceeded, Kind: task.KindCompleted},
		Attempts: 1,
		SubTasks: []task.TaskLike{
			{Name: "extract", State: task.StateLike{Name: task.NameSucceeded, Kind: task.KindCompleted}, Attempts: 1},
		},
	}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("security header = %q", got)
	}
}

func TestListSnapshotsEmpty(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/snapshots", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want empty list", rec.Body.String())
	}
}

func TestIngestAndFetchSnapshot(t *testing.T) {
	h, _ := newTestHandler(t)

	body, err := json.Marshal(sampleRoot())
	if err != nil {
		t.Fatal(err)
	}
	rec := doRequest(t, h, http.MethodPost, "/api/snapshots", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest status = %d body = %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	id := created["id"]
	if id == "" {
		t.Fatal("no id returned")
	}

	rec = doRequest(t, h, http.MethodGet, "/api/snapshots/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.TaskName != "pipeline" || !snap.Finalised {
		t.Errorf("snapshot = %+v, want finalised pipeline", snap)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/tasks/pipeline/latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("latest status = %d", rec.Code)
	}
}

func TestIngestInvalidSnapshot(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/snapshots", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("garbage body status = %d", rec.Code)
	}

	// Well-formed JSON that fails reconstruction: FAILED without error.
	bad := sampleRoot()
	bad.State = task.StateLike{Name: task.NameFailed, Kind: task.KindFailed}
	body, err := json.Marshal(bad)
	if err != nil {
		t.Fatal(err)
	}
	rec = doRequest(t, h, http.MethodPost, "/api/snapshots", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid snapshot status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestGetSnapshotNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/snapshots/absent", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodGet, "/api/tasks/absent/latest", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("latest status = %d", rec.Code)
	}
}

func TestRunLogsEndpoint(t *testing.T) {
	h, db := newTestHandler(t)

	id, err := db.SaveSnapshot(sampleRoot(), true)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AddRunLog(id, "info", "first line"); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, h, http.MethodGet, "/api/snapshots/"+id+"/logs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var logs []storage.RunLog
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Message != "first line" {
		t.Errorf("logs = %+v", logs)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/snapshots/absent/logs", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing snapshot logs status = %d", rec.Code)
	}
}
