package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/snonux/telephone/internal/walker"
)

// ProgressReport is the JSON body of /progress
type ProgressReport struct {
	Leaves          int            `json:"leaves"`
	PassesCompleted int            `json:"passes_completed"`
	PassesTotal     int            `json:"passes_total"`
	States          map[string]int `json:"states"`
}

// Server is the HTTP status server
type Server struct {
	addr    string
	router  *chi.Mux
	server  *http.Server
	logger  *slog.Logger
	metrics *Metrics

	mu           sync.RWMutex
	progress     *walker.Progress
	leaves       int
	repeatPasses int
}

// NewServer creates a status server for addr serving /metrics, /healthz and
// /progress
func NewServer(addr string, m *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{addr: addr, logger: logger, metrics: m}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/progress", s.handleProgress)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	s.router = r

	return s
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Track makes /progress report on p
func (s *Server) Track(p *walker.Progress, leaves, repeatPasses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
	s.leaves = leaves
	s.repeatPasses = repeatPasses
}

// Start listens on the configured address and serves in the background. It
// returns the address actually bound.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", "err", err)
		}
	}()

	s.logger.Info("status server started", "addr", ln.Addr().String())
	return ln.Addr().String(), nil
}

// Stop shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := ProgressReport{
		Leaves:      s.leaves,
		PassesTotal: s.leaves * s.repeatPasses,
		States:      map[string]int{},
	}
	if s.progress != nil {
		report.PassesCompleted = s.progress.Completed()
		for state, n := range s.progress.StateCounts() {
			report.States[state.String()] = n
		}
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.logger.Warn("failed to write progress", "err", err)
	}
}
