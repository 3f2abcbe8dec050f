// Package main provides a local HTTP server for development and testing.
// It accepts EventBridge events over HTTP and runs them through the same
// handler the Lambda function uses.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"listener-certificate-updater/internal/config"
	"listener-certificate-updater/internal/handlers"
	"listener-certificate-updater/internal/models"
	elbv2service "listener-certificate-updater/internal/services/elbv2"
	"listener-certificate-updater/internal/utils"
)

// maxEventBytes caps the size of an event accepted by /api/invoke.
const maxEventBytes = 256 * 1024

// EventInvoker runs a certificate event through the update handler.
type EventInvoker interface {
	Handle(ctx context.Context, event events.CloudWatchEvent) (models.UpdateResponse, error)
}

// HealthChecker reports listener health.
type HealthChecker interface {
	Check(ctx context.Context) (handlers.HealthResponse, int)
}

// Server holds all dependencies
type Server struct {
	invoker EventInvoker
	health  HealthChecker
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	if err := cfg.Validate(); err != nil {
		log.Printf("Warning: %v; invocations will fail until it is set", err)
	}

	svc, err := elbv2service.NewService(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create ELBv2 service: %v", err)
	}

	server := &Server{
		invoker: handlers.NewCertUpdateHandlerWithDeps(cfg, svc),
		health:  handlers.NewHealthHandlerWithDeps(cfg, svc),
	}

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)

	log.Printf("Listener Certificate Updater local server")
	log.Printf("Invoke: POST http://localhost:%s/api/invoke", cfg.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Port)

	if err := http.ListenAndServe(addr, server.routes()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/health", s.healthHandler)
	mux.HandleFunc("/api/invoke", s.invokeHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response, status := s.health.Check(r.Context())
	writeJSON(w, status, response)
}

func (s *Server) invokeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "Method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Failed to read request body"})
		return
	}

	var event events.CloudWatchEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid JSON in request body"})
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	result, err := s.invoker.Handle(r.Context(), event)
	if err != nil {
		writeJSON(w, invokeErrorStatus(err), Response{Success: false, Error: err.Error(), Data: map[string]string{"eventId": event.ID}})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// invokeErrorStatus maps a handler error to the HTTP status reported locally.
func invokeErrorStatus(err error) int {
	switch {
	case models.IsEventError(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMissingListenerARN):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
