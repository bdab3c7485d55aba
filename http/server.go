package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/recall"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultControlAddr is the default listen address of the control API.
const DefaultControlAddr = "127.0.0.1:7777"

// Server is the agent control API. It exposes the capture gate state,
// accepts exclusions from other processes, and runs searches.
type Server struct {
	server *http.Server
	router chi.Router
	ln     net.Listener
	once   sync.Once

	// Addr is the listen address. Defaults to DefaultControlAddr.
	Addr string

	Tabs   recall.TabState
	Finder recall.Finder

	// Metrics, if set, is served at /metrics.
	Metrics http.Handler

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewServer returns a new Server. Routes are registered on Open.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{ReadHeaderTimeout: 10 * time.Second},
		router: chi.NewRouter(),
		Addr:   DefaultControlAddr,
	}
	s.server.Handler = s.router
	return s
}

// Handler registers routes on first use and returns the root handler
// without listening.
func (s *Server) Handler() http.Handler {
	s.once.Do(s.registerRoutes)
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/tabs", s.handleTabs)
	s.router.Post("/tabs/{tabID}/exclude", s.handleExclude)
	s.router.Post("/search", s.handleSearch)
	if s.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.Metrics)
	}
}

// Open starts listening and serves in the background.
func (s *Server) Open() (err error) {
	s.Handler()
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Error("control API stopped", "err", err)
		}
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return "http://" + s.Addr
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// TabsResponse is the body of GET /tabs.
type TabsResponse struct {
	Records    []recall.TabRecord `json:"records"`
	Exclusions []recall.TabID     `json:"exclusions"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTabs(w http.ResponseWriter, r *http.Request) {
	resp := TabsResponse{
		Records:    s.Tabs.Records(),
		Exclusions: s.Tabs.Exclusions(),
	}
	if resp.Records == nil {
		resp.Records = []recall.TabRecord{}
	}
	if resp.Exclusions == nil {
		resp.Exclusions = []recall.TabID{}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExclude(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tabID")
	if id == "" {
		s.writeError(w, r, recall.Errorf(recall.EINVALID, "tab ID required"))
		return
	}
	s.Tabs.Exclude(recall.TabID(id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, recall.Errorf(recall.EINVALID, "invalid JSON body"))
		return
	}
	res, err := s.Finder.Find(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Debug("response write failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := recall.ErrorCode(err)
	status := statusFromCode(code)
	if status == http.StatusInternalServerError {
		s.logger().Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Code: code, Error: recall.ErrorMessage(err)})
}

// statusFromCode maps recall error codes to control API statuses.
// Upstream service failures surface as 502.
func statusFromCode(code string) int {
	switch code {
	case recall.EINVALID:
		return http.StatusBadRequest
	case recall.ENOTFOUND, recall.ENOMATCH:
		return http.StatusNotFound
	case recall.EFORBIDDEN, recall.EHTTP, recall.ETRANSPORT:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger().Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
