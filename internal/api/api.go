package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"nepsereport/internal/events"
	"nepsereport/internal/service"
)

// Options configures the router.
type Options struct {
	Service *service.Service
	Hub     *events.Hub
	Logger  *slog.Logger
}

// NewRouter builds the HTTP API router.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{
		svc:    opts.Service,
		hub:    opts.Hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r.Get("/api/health", h.health)
	r.Get("/api/config", h.getConfig)
	r.Get("/api/template", h.getTemplate)

	// Reports
	r.Get("/api/reports", h.listReports)
	r.Post("/api/reports", h.createReport)
	r.Get("/api/reports/{id}", h.getReport)

	r.Get("/api/events", h.events)

	return r
}

type handler struct {
	svc      *service.Service
	hub      *events.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	recordErrorMessage(w, message)
	writeJSON(w, status, map[string]string{"error": message})
}

// recordErrorMessage hands message to the request logger when w is the
// logging writer.
func recordErrorMessage(w http.ResponseWriter, message string) {
	if lw, ok := w.(interface{ SetErrorMessage(string) }); ok {
		lw.SetErrorMessage(message)
	}
}
