// Package handlers provides the Lambda handlers for the listener certificate updater.
package handlers

import (
	"context"

	"github.com/aws/aws-lambda-go/events"

	appConfig "listener-certificate-updater/internal/config"
	"listener-certificate-updater/internal/models"
	elbv2service "listener-certificate-updater/internal/services/elbv2"
	"listener-certificate-updater/internal/utils"
)

// ListenerUpdater replaces the certificate bound to a listener.
type ListenerUpdater interface {
	ReplaceListenerCertificate(ctx context.Context, listenerARN, certificateARN string) error
}

// CertUpdateHandler binds newly issued certificates to the configured listener.
type CertUpdateHandler struct {
	cfg     *appConfig.Config
	updater ListenerUpdater
}

// NewCertUpdateHandler creates a handler backed by the ELBv2 API.
// A missing LISTENER_ARN does not fail construction; each invocation reports it.
func NewCertUpdateHandler(ctx context.Context, cfg *appConfig.Config) (*CertUpdateHandler, error) {
	svc, err := elbv2service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewCertUpdateHandlerWithDeps(cfg, svc), nil
}

// NewCertUpdateHandlerWithDeps creates a handler from explicit dependencies.
func NewCertUpdateHandlerWithDeps(cfg *appConfig.Config, updater ListenerUpdater) *CertUpdateHandler {
	return &CertUpdateHandler{cfg: cfg, updater: updater}
}

// Handle processes a certificate-issuance event.
func (h *CertUpdateHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (models.UpdateResponse, error) {
	logger := utils.FromContext(ctx).With(
		utils.String("eventId", event.ID),
		utils.String("source", event.Source),
		utils.String("detailType", event.DetailType),
	)

	detail, err := models.ParseCertificateEventDetail(event.Detail)
	if err != nil {
		logger.Error("Rejected certificate event", utils.Error(err))
		return models.UpdateResponse{}, err
	}
	certificateARN := detail.CertificateARN()

	if err := h.cfg.Validate(); err != nil {
		logger.Error("Listener is not configured", utils.Error(err))
		return models.UpdateResponse{}, err
	}
	listenerARN := h.cfg.ListenerARN

	logger.Info("Updating listener certificate",
		utils.String("listenerArn", listenerARN),
		utils.String("certificateArn", certificateARN))

	if err := h.updater.ReplaceListenerCertificate(ctx, listenerARN, certificateARN); err != nil {
		return models.UpdateResponse{}, err
	}

	return models.NewUpdateSuccessResponse(), nil
}
