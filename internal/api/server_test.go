package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vovakirdan/tri-runner/internal/config"
	_ "github.com/vovakirdan/tri-runner/internal/games/triathlon"
	"github.com/vovakirdan/tri-runner/internal/runner"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

// memStore is an in-memory RunStore.
type memStore struct {
	runs []storage.RunResult
	err  error
}

func (m *memStore) TopRuns(courseID string, limit int) ([]storage.RunResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []storage.RunResult
	for _, r := range m.runs {
		if r.CourseID == courseID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) GetCourseStats(courseID string) (*storage.CourseStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	st := &storage.CourseStats{CourseID: courseID}
	for _, r := range m.runs {
		if r.CourseID == courseID {
			st.Runs++
		}
	}
	return st, nil
}

func (m *memStore) RunByID(id string) (*storage.RunResult, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, m.err
}

func loadCourse(id string) (runner.Config, error) {
	c, err := config.Load(id, "")
	if err != nil {
		return runner.Config{}, err
	}
	return c.Build()
}

func newTestServer(store *memStore) http.Handler {
	return NewServer(store, loadCourse, nil).Routes()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newTestServer(&memStore{}), "/health")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestCoursesEndpoint(t *testing.T) {
	w := get(t, newTestServer(&memStore{}), "/courses")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var courses []CourseInfo
	if err := json.NewDecoder(w.Body).Decode(&courses); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	found := map[string]bool{}
	for _, c := range courses {
		found[c.ID] = true
	}
	if !found["triathlon"] || !found["sprint"] {
		t.Errorf("Expected triathlon and sprint, got %+v", courses)
	}
}

func TestPhasesEndpoint(t *testing.T) {
	h := newTestServer(&memStore{})

	w := get(t, h, "/courses/triathlon/phases")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp PhasesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Phases) != 3 || resp.TotalDistance != 16000 || resp.Lanes != 5 {
		t.Errorf("Unexpected phases response: %+v", resp)
	}
	if resp.Phases[0].Discipline != "swim" || resp.Phases[0].MaxSpeed != 200 {
		t.Errorf("Unexpected first phase: %+v", resp.Phases[0])
	}

	if w := get(t, h, "/courses/atlantis/phases"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown course, got %d", w.Code)
	}
}

func TestRunsEndpoint(t *testing.T) {
	store := &memStore{runs: []storage.RunResult{
		{ID: "a", CourseID: "triathlon", Status: storage.StatusWon, Distance: 16000, RaceSeconds: 125},
		{ID: "b", CourseID: "triathlon", Status: storage.StatusCrashed, Distance: 900},
		{ID: "c", CourseID: "sprint", Status: storage.StatusCrashed, Distance: 100},
	}}
	h := newTestServer(store)

	w := get(t, h, "/courses/triathlon/runs?limit=5")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var runs []RunInfo
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Time != "02h05" {
		t.Errorf("Expected formatted time 02h05, got %q", runs[0].Time)
	}

	if w := get(t, h, "/courses/triathlon/runs?limit=zero"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", w.Code)
	}

	if w := get(t, h, "/runs/c"); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for known run, got %d", w.Code)
	}
	if w := get(t, h, "/runs/zzz"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown run, got %d", w.Code)
	}

	w = get(t, h, "/courses/triathlon/stats")
	var stats map[string]any
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats["runs"] != float64(2) {
		t.Errorf("Expected 2 runs in stats, got %v", stats["runs"])
	}
}

func TestStoreErrors(t *testing.T) {
	h := newTestServer(&memStore{err: errors.New("disk on fire")})

	w := get(t, h, "/courses/triathlon/runs")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if resp.Error == "" || resp.Error == "disk on fire" {
		t.Errorf("Expected a generic error message, got %q", resp.Error)
	}
}
