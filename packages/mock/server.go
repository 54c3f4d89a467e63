// Package mock provides an in-memory backend that implements the status
// check API apiprobe tests: GET /api/, POST /api/status and GET /api/status.
//
// It is used for local dry runs ("apiprobe mock") and as the fake backend in
// tests. Faults can be injected per route.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/checks"
	"github.com/google/uuid"
)

// TimestampLayout matches the naive ISO-8601 timestamps the backend emits.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Server is a mock status check backend
type Server struct {
	port     int
	delay    time.Duration
	greeting string
	logger   *slog.Logger

	mu      sync.Mutex
	records []checks.StatusCheck
	faults  map[string]Fault
	hits    int
}

// Fault replaces the normal response of a route.
type Fault struct {
	StatusCode int
	Body       string
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithGreeting changes the root endpoint message
func WithGreeting(message string) Option {
	return func(s *Server) {
		s.greeting = message
	}
}

// WithLogger logs every request at info level
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFault makes method+path answer with f instead of the normal response
func WithFault(method, path string, f Fault) Option {
	return func(s *Server) {
		s.faults[method+" "+path] = f
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		port:     8001,
		greeting: checks.Greeting,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		faults:   make(map[string]Fault),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+checks.RootPath+"{$}", s.handleRoot)
	mux.HandleFunc("POST "+checks.StatusPath, s.handleCreate)
	mux.HandleFunc("GET "+checks.StatusPath, s.handleList)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		s.mu.Lock()
		s.hits++
		fault, faulted := s.faults[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if s.delay > 0 {
			time.Sleep(s.delay)
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if faulted {
			rec.WriteHeader(fault.StatusCode)
			_, _ = io.WriteString(rec, fault.Body)
		} else {
			mux.ServeHTTP(rec, r)
		}

		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// StartWithContext serves until ctx is done
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("mock server started", "url", fmt.Sprintf("http://localhost:%d", s.port))
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Records returns a copy of the stored status checks
func (s *Server) Records() []checks.StatusCheck {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]checks.StatusCheck, len(s.records))
	copy(out, s.records)
	return out
}

// Hits returns the number of requests served
func (s *Server) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.greeting})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ClientName *string `json:"client_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ClientName == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "client_name is required"})
		return
	}

	record := checks.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: *input.ClientName,
		Timestamp:  time.Now().UTC().Format(TimestampLayout),
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Records())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
