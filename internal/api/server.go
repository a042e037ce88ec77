package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/lure/internal/session"
	"github.com/MikeSquared-Agency/lure/internal/store"
)

// Responder produces the persona's reply for one turn. Persona text
// generation lives outside this service; the default responder returns the
// canned engagement lines.
type Responder func(res session.Result, latest string) string

func defaultResponder(res session.Result, latest string) string {
	if res.Verdict.IsScam {
		return "I am confused. Can you please call me?"
	}
	return "I'm sorry, I didn't understand that. Who is this?"
}

type Server struct {
	router  *chi.Mux
	port    int
	apiKey  string
	orch    *session.Orchestrator
	archive *store.Store
	respond Responder
	logger  *slog.Logger
}

// NewServer wires the HTTP surface. archive may be nil; the sessions
// endpoint is only registered when it is present. respond may be nil, in
// which case the canned responder is used.
func NewServer(port int, apiKey string, orch *session.Orchestrator, archive *store.Store, respond Responder, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if respond == nil {
		respond = defaultResponder
	}

	s := &Server{
		router:  router,
		port:    port,
		apiKey:  apiKey,
		orch:    orch,
		archive: archive,
		respond: respond,
		logger:  logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/lure/status", s.status)
	if archive != nil {
		router.Get("/api/v1/lure/sessions", s.sessions)
	}
	router.With(s.requireKey).Post("/honeypot", s.honeypot)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// requireKey enforces the X-API-Key header when a key is configured.
func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"agent":          "lure",
		"status":         "engaging",
		"activeSessions": s.orch.ActiveSessions(),
		"reportsIssued":  s.orch.ReportsIssued(),
	})
}

func (s *Server) sessions(w http.ResponseWriter, r *http.Request) {
	rows, err := s.archive.RecentSessions(r.Context(), 50)
	if err != nil {
		s.logger.Error("sessions query failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "query failed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"sessions": rows})
}
