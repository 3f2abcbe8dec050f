package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "listener-certificate-updater/internal/config"
	elbv2service "listener-certificate-updater/internal/services/elbv2"
	"listener-certificate-updater/internal/utils"
)

// ListenerDescriber reads the current state of a listener.
type ListenerDescriber interface {
	DescribeListener(ctx context.Context, listenerARN string) (*elbv2service.ListenerInfo, error)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	cfg       *appConfig.Config
	describer ListenerDescriber
	now       func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ctx context.Context, cfg *appConfig.Config) (*HealthHandler, error) {
	svc, err := elbv2service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewHealthHandlerWithDeps(cfg, svc), nil
}

// NewHealthHandlerWithDeps creates a health handler from explicit dependencies.
func NewHealthHandlerWithDeps(cfg *appConfig.Config, describer ListenerDescriber) *HealthHandler {
	return &HealthHandler{cfg: cfg, describer: describer, now: time.Now}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status       string   `json:"status"`
	Timestamp    string   `json:"timestamp"`
	Service      string   `json:"service"`
	Version      string   `json:"version"`
	Stage        string   `json:"stage"`
	Listener     string   `json:"listener"`
	Certificates []string `json:"certificates,omitempty"`
}

// Check describes the configured listener and returns the health report with
// the HTTP status that goes with it.
func (h *HealthHandler) Check(ctx context.Context) (HealthResponse, int) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Service:   "listener-certificate-updater",
		Version:   h.cfg.Version,
		Stage:     h.cfg.Stage,
	}

	if err := h.cfg.Validate(); err != nil {
		response.Status = "degraded"
		response.Listener = "not configured"
		return response, http.StatusServiceUnavailable
	}

	info, err := h.describer.DescribeListener(ctx, h.cfg.ListenerARN)
	if err != nil {
		utils.FromContext(ctx).Warn("Listener health check failed",
			utils.String("listenerArn", h.cfg.ListenerARN),
			utils.String("errorCode", elbv2service.APIErrorCode(err)),
			utils.Error(err))
		response.Status = "degraded"
		response.Listener = "unreachable"
		if errors.Is(err, elbv2service.ErrListenerNotFound) {
			response.Listener = "not found"
		}
		return response, http.StatusServiceUnavailable
	}

	response.Listener = info.ListenerARN
	response.Certificates = info.Certificates
	return response, http.StatusOK
}

// Handle processes API Gateway health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response, statusCode := h.Check(ctx)

	body, err := json.Marshal(response)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to marshal health response: %w", err)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": "*",
			"Content-Type":                "application/json",
		},
		Body: string(body),
	}, nil
}
