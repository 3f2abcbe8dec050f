// Package elbv2service wraps the Elastic Load Balancing v2 API calls used to
// rebind listener certificates.
package elbv2service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	appConfig "listener-certificate-updater/internal/config"
	"listener-certificate-updater/internal/utils"
)

// ListenerAPI is the subset of the ELBv2 client used by Service.
type ListenerAPI interface {
	ModifyListener(ctx context.Context, params *elasticloadbalancingv2.ModifyListenerInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.ModifyListenerOutput, error)
	DescribeListeners(ctx context.Context, params *elasticloadbalancingv2.DescribeListenersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeListenersOutput, error)
}

// Service handles listener operations
type Service struct {
	client ListenerAPI
}

// ListenerInfo is a read-only view of a listener
type ListenerInfo struct {
	ListenerARN     string   `json:"listenerArn"`
	LoadBalancerARN string   `json:"loadBalancerArn,omitempty"`
	Protocol        string   `json:"protocol,omitempty"`
	Port            int32    `json:"port,omitempty"`
	Certificates    []string `json:"certificates"`
}

// ErrListenerNotFound is returned when DescribeListeners yields no listener.
var ErrListenerNotFound = errors.New("listener not found")

// NewService creates a new ELBv2 service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewServiceWithClient(elasticloadbalancingv2.NewFromConfig(cfg)), nil
}

// NewServiceWithClient creates a service around an existing client.
func NewServiceWithClient(client ListenerAPI) *Service {
	return &Service{client: client}
}

// ModifyListenerCertificateInput builds the request that replaces a listener's
// certificate list with the single given certificate.
func ModifyListenerCertificateInput(listenerARN, certificateARN string) *elasticloadbalancingv2.ModifyListenerInput {
	return &elasticloadbalancingv2.ModifyListenerInput{
		ListenerArn: aws.String(listenerARN),
		Certificates: []types.Certificate{
			{CertificateArn: aws.String(certificateARN)},
		},
	}
}

// ReplaceListenerCertificate binds certificateARN to the listener, replacing
// whatever certificate it had. Existing certificates are never merged in.
func (s *Service) ReplaceListenerCertificate(ctx context.Context, listenerARN, certificateARN string) error {
	logger := utils.FromContext(ctx)

	_, err := s.client.ModifyListener(ctx, ModifyListenerCertificateInput(listenerARN, certificateARN))
	if err != nil {
		logger.Error("Failed to modify listener",
			zap.String("listenerArn", listenerARN),
			zap.String("certificateArn", certificateARN),
			zap.String("errorCode", APIErrorCode(err)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to modify listener: %w", err)
	}

	logger.Info("Modified listener certificate",
		zap.String("listenerArn", listenerARN),
		zap.String("certificateArn", certificateARN),
	)

	return nil
}

// DescribeListener returns the current state of a listener
func (s *Service) DescribeListener(ctx context.Context, listenerARN string) (*ListenerInfo, error) {
	output, err := s.client.DescribeListeners(ctx, &elasticloadbalancingv2.DescribeListenersInput{
		ListenerArns: []string{listenerARN},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe listener: %w", err)
	}

	if len(output.Listeners) == 0 {
		return nil, ErrListenerNotFound
	}

	l := output.Listeners[0]
	info := &ListenerInfo{
		ListenerARN:     aws.ToString(l.ListenerArn),
		LoadBalancerARN: aws.ToString(l.LoadBalancerArn),
		Protocol:        string(l.Protocol),
		Port:            aws.ToInt32(l.Port),
		Certificates:    []string{},
	}
	for _, cert := range l.Certificates {
		info.Certificates = append(info.Certificates, aws.ToString(cert.CertificateArn))
	}

	return info, nil
}

// APIErrorCode returns the service error code carried by err, or "" when err
// did not come from the API.
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
