// Package web exposes the assistant over a JSON HTTP API with a small
// embedded page.
package web

import (
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/csheth/edugenius/internal/assistant"
	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/logging"
	"github.com/csheth/edugenius/internal/markdown"
	"github.com/csheth/edugenius/internal/material"
	"github.com/csheth/edugenius/internal/settings"
)

// ClientHeader identifies a browser tab. Each value gets its own orchestrator
// so one learner's pending answer never blocks another's.
const ClientHeader = "X-Client-ID"

const (
	maxClients      = 1024
	maxBodyBytes    = 1 << 20
	historyPageSize = 20
)

//go:embed index.html
var indexPage []byte

// Config wires the server to its collaborators. Only LLM may be nil, in which
// case asking answers 503.
type Config struct {
	LLM           llm.Client
	Settings      *settings.Store
	History       *history.Log
	Auth          *auth.Authenticator
	Material      *material.Package
	RenderOptions markdown.Options
	AskTimeout    time.Duration
}

// Server routes HTTP requests.
type Server struct {
	router chi.Router
	cfg    Config
	log    *slog.Logger

	mu      sync.Mutex
	clients map[string]*assistant.Orchestrator
}

// New builds the router. A nil settings store falls back to in-memory
// defaults and a nil authenticator disables the admin routes.
func New(cfg Config) (*Server, error) {
	if cfg.Settings == nil {
		store, err := settings.Open("")
		if err != nil {
			return nil, err
		}
		cfg.Settings = store
	}
	if cfg.Auth == nil {
		authn, err := auth.New(auth.Config{})
		if err != nil {
			return nil, err
		}
		cfg.Auth = authn
	}
	if cfg.AskTimeout <= 0 {
		cfg.AskTimeout = 3 * time.Minute
	}
	s := &Server{
		router:  chi.NewRouter(),
		cfg:     cfg,
		log:     logging.Logger(),
		clients: map[string]*assistant.Orchestrator{},
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexPage)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/ask", s.handleAsk)
		r.Post("/render", s.handleRender)
		r.Get("/history", s.handleHistory)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Post("/logout", s.handleLogout)
				r.Get("/settings", s.handleGetSettings)
				r.Put("/settings", s.handlePutSettings)
				r.Post("/subjects", s.handleAddSubject)
				r.Delete("/subjects/{id}", s.handleRemoveSubject)
				r.Post("/ads/{slot}/toggle", s.handleToggleSlot)
			})
		})
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
	})
}

// orchestrator returns the orchestrator for the calling client, issuing a new
// client id when the header is missing or malformed.
func (s *Server) orchestrator(w http.ResponseWriter, r *http.Request) *assistant.Orchestrator {
	id := strings.TrimSpace(r.Header.Get(ClientHeader))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set(ClientHeader, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if orch, ok := s.clients[id]; ok {
		return orch
	}
	if len(s.clients) >= maxClients {
		s.evictIdleLocked()
	}
	opts := []assistant.Option{
		assistant.WithLogger(s.log),
		assistant.WithRenderOptions(s.cfg.RenderOptions),
	}
	if s.cfg.History != nil {
		opts = append(opts, assistant.WithRecorder(s.cfg.History))
	}
	orch := assistant.New(s.cfg.LLM, opts...)
	s.clients[id] = orch
	return orch
}

func (s *Server) evictIdleLocked() {
	for id, orch := range s.clients {
		if !orch.Snapshot().Outstanding() {
			delete(s.clients, id)
		}
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := logging.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("web: request failed", "status", status, "err", err)
	} else {
		logger.Warn("web: request failed", "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
