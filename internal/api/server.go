// Package api serves the read-only HTTP leaderboard: registered courses,
// their phase tables and stored runs.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/runner"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

// RunStore is the part of the run store the API reads.
type RunStore interface {
	TopRuns(courseID string, limit int) ([]storage.RunResult, error)
	GetCourseStats(courseID string) (*storage.CourseStats, error)
	RunByID(id string) (*storage.RunResult, error)
}

// CourseLoader resolves a course configuration by id.
type CourseLoader func(id string) (runner.Config, error)

// Server handles HTTP requests.
type Server struct {
	store  RunStore
	load   CourseLoader
	logger *log.Logger
}

// NewServer creates a new API server. A nil logger discards output.
func NewServer(store RunStore, load CourseLoader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{store: store, load: load, logger: logger}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/courses", s.handleCourses)
	r.Route("/courses/{id}", func(r chi.Router) {
		r.Get("/phases", s.handlePhases)
		r.Get("/runs", s.handleRuns)
		r.Get("/stats", s.handleStats)
	})
	r.Get("/runs/{id}", s.handleRun)

	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// CourseInfo is one entry of GET /courses.
type CourseInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PhaseInfo is one row of GET /courses/{id}/phases.
type PhaseInfo struct {
	Name       string   `json:"name"`
	Discipline string   `json:"discipline"`
	Threshold  float64  `json:"threshold"`
	MinSpeed   float64  `json:"min_speed"`
	MaxSpeed   float64  `json:"max_speed"`
	Obstacles  []string `json:"obstacles"`
}

// PhasesResponse is the body of GET /courses/{id}/phases.
type PhasesResponse struct {
	Course        string      `json:"course"`
	TotalDistance float64     `json:"total_distance"`
	Lanes         int         `json:"lanes"`
	Phases        []PhaseInfo `json:"phases"`
}

// RunInfo is a stored run as served.
type RunInfo struct {
	ID        string    `json:"id"`
	Course    string    `json:"course"`
	Status    string    `json:"status"`
	Distance  float64   `json:"distance"`
	Elapsed   float64   `json:"elapsed"`
	Time      string    `json:"time"`
	Phase     int       `json:"phase"`
	Seed      int64     `json:"seed"`
	ReplayID  string    `json:"replay_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toRunInfo(r storage.RunResult) RunInfo {
	return RunInfo{
		ID:        r.ID,
		Course:    r.CourseID,
		Status:    r.Status,
		Distance:  r.Distance,
		Elapsed:   r.Elapsed,
		Time:      runner.FormatTime(r.RaceSeconds),
		Phase:     r.Phase,
		Seed:      r.Seed,
		ReplayID:  r.ReplayID,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	list := registry.List()
	out := make([]CourseInfo, 0, len(list))
	for _, info := range list {
		out = append(out, CourseInfo{ID: info.ID, Title: info.Title})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !registry.Exists(id) {
		s.writeError(w, http.StatusNotFound, "unknown course "+strconv.Quote(id))
		return
	}
	cfg, err := s.load(id)
	if err != nil {
		s.logger.Error("course load failed", "course", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := PhasesResponse{Course: id, TotalDistance: cfg.TotalDistance(), Lanes: len(cfg.Lanes)}
	for _, p := range cfg.Phases {
		names := make([]string, len(p.Obstacles))
		for i, k := range p.Obstacles {
			names[i] = k.String()
		}
		resp.Phases = append(resp.Phases, PhaseInfo{
			Name:       p.Name,
			Discipline: p.Discipline.String(),
			Threshold:  p.Threshold,
			MinSpeed:   p.MinSpeed(),
			MaxSpeed:   p.MaxSpeed(),
			Obstacles:  names,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	runs, err := s.store.TopRuns(id, limit)
	if err != nil {
		s.logger.Error("top runs failed", "course", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "cannot load runs")
		return
	}
	out := make([]RunInfo, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunInfo(run))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.store.GetCourseStats(id)
	if err != nil {
		s.logger.Error("course stats failed", "course", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "cannot load stats")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"course":        st.CourseID,
		"runs":          st.Runs,
		"finishes":      st.Finishes,
		"best_time":     st.BestTime,
		"best_distance": st.BestDistance,
		"avg_distance":  st.AvgDistance,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.RunByID(id)
	switch {
	case err != nil:
		s.logger.Error("run lookup failed", "id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "cannot load run")
	case run == nil:
		s.writeError(w, http.StatusNotFound, "run not found")
	default:
		s.writeJSON(w, http.StatusOK, toRunInfo(*run))
	}
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		s.logger.Warn("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
