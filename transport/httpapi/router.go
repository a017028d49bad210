package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"org-relay/contract"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the relay over HTTP: the WebSocket endpoint, the membership listing and a health probe.
type Server struct {
	relay     contract.IRelay
	gate      contract.IGate
	directory contract.IMembershipDirectory
	websocket http.Handler
	log       *slog.Logger
}

func NewServer(log *slog.Logger, relay contract.IRelay, gate contract.IGate,
	directory contract.IMembershipDirectory, websocket http.Handler) *Server {
	return &Server{relay: relay, gate: gate, directory: directory, websocket: websocket, log: log}
}

// Router builds the chi router with its middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/ws", s.websocket)
	r.Route("/api", func(r chi.Router) {
		r.Get("/users", s.handleUsers)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.relay.Count(),
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
