package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appConfig "listener-certificate-updater/internal/config"
	"listener-certificate-updater/internal/handlers"
	"listener-certificate-updater/internal/models"
	elbv2service "listener-certificate-updater/internal/services/elbv2"
)

type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) ReplaceListenerCertificate(ctx context.Context, listenerARN, certificateARN string) error {
	args := m.Called(ctx, listenerARN, certificateARN)
	return args.Error(0)
}

// recordingListenerAPI captures ModifyListener requests sent through the real service
type recordingListenerAPI struct {
	inputs []*elasticloadbalancingv2.ModifyListenerInput
	err    error
}

func (r *recordingListenerAPI) ModifyListener(ctx context.Context, params *elasticloadbalancingv2.ModifyListenerInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.ModifyListenerOutput, error) {
	r.inputs = append(r.inputs, params)
	if r.err != nil {
		return nil, r.err
	}
	return &elasticloadbalancingv2.ModifyListenerOutput{}, nil
}

func (r *recordingListenerAPI) DescribeListeners(ctx context.Context, params *elasticloadbalancingv2.DescribeListenersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeListenersOutput, error) {
	return &elasticloadbalancingv2.DescribeListenersOutput{}, nil
}

func certificateEvent(certificateARN string) events.CloudWatchEvent {
	detail, _ := json.Marshal(map[string]interface{}{
		"eventSource": "acm.amazonaws.com",
		"eventName":   "ImportCertificate",
		"requestParameters": map[string]string{
			"certificateArn": certificateARN,
		},
	})
	return events.CloudWatchEvent{
		ID:         "event-1",
		Source:     "aws.acm",
		DetailType: "AWS API Call via CloudTrail",
		Detail:     detail,
	}
}

func TestHandle_Success(t *testing.T) {
	updater := new(mockUpdater)
	updater.On("ReplaceListenerCertificate", mock.Anything, "listener-abc", "cert-123").Return(nil).Once()

	h := handlers.NewCertUpdateHandlerWithDeps(&appConfig.Config{ListenerARN: "listener-abc"}, updater)
	resp, err := h.Handle(context.Background(), certificateEvent("cert-123"))

	require.NoError(t, err)
	assert.Equal(t, models.UpdateResponse{StatusCode: 200, Body: "SSL certificate updated successfully."}, resp)
	updater.AssertExpectations(t)
}

func TestHandle_SendsSingleCertificateRequest(t *testing.T) {
	api := &recordingListenerAPI{}
	h := handlers.NewCertUpdateHandlerWithDeps(
		&appConfig.Config{ListenerARN: "listener-abc"},
		elbv2service.NewServiceWithClient(api),
	)

	resp, err := h.Handle(context.Background(), certificateEvent("cert-123"))
	require.NoError(t, err)
	assert.Equal(t, models.NewUpdateSuccessResponse(), resp)

	require.Len(t, api.inputs, 1)
	assert.Equal(t, "listener-abc", aws.ToString(api.inputs[0].ListenerArn))
	require.Len(t, api.inputs[0].Certificates, 1)
	assert.Equal(t, "cert-123", aws.ToString(api.inputs[0].Certificates[0].CertificateArn))
}

func TestHandle_RepeatedEventIssuesIdenticalRequests(t *testing.T) {
	api := &recordingListenerAPI{}
	h := handlers.NewCertUpdateHandlerWithDeps(
		&appConfig.Config{ListenerARN: "listener-abc"},
		elbv2service.NewServiceWithClient(api),
	)
	event := certificateEvent("cert-123")

	for i := 0; i < 2; i++ {
		_, err := h.Handle(context.Background(), event)
		require.NoError(t, err)
	}

	require.Len(t, api.inputs, 2)
	assert.Equal(t, api.inputs[0], api.inputs[1])
}

func TestHandle_MissingDetail(t *testing.T) {
	updater := new(mockUpdater)
	h := handlers.NewCertUpdateHandlerWithDeps(&appConfig.Config{ListenerARN: "listener-abc"}, updater)

	resp, err := h.Handle(context.Background(), events.CloudWatchEvent{ID: "event-1", Source: "aws.acm"})

	assert.ErrorIs(t, err, models.ErrMissingDetail)
	assert.Equal(t, models.UpdateResponse{}, resp)
	updater.AssertNotCalled(t, "ReplaceListenerCertificate", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_MalformedDetail(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		expected error
	}{
		{"no requestParameters", `{"eventName": "ImportCertificate"}`, models.ErrMissingRequestParameters},
		{"no certificateArn", `{"requestParameters": {"domainName": "example.com"}}`, models.ErrMissingCertificateARN},
		{"not an object", `[1, 2, 3]`, models.ErrMalformedEvent},
		{"capitalized keys", `{"RequestParameters": {"CertificateARN": "cert-wrongcase"}}`, models.ErrMissingRequestParameters},
		{"lowercase keys", `{"requestparameters": {"certificatearn": "cert-lower"}}`, models.ErrMissingRequestParameters},
		{"miscased certificateArn", `{"requestParameters": {"CERTIFICATEARN": "cert-b"}}`, models.ErrMissingCertificateARN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater := new(mockUpdater)
			h := handlers.NewCertUpdateHandlerWithDeps(&appConfig.Config{ListenerARN: "listener-abc"}, updater)

			_, err := h.Handle(context.Background(), events.CloudWatchEvent{Detail: json.RawMessage(tt.detail)})

			assert.ErrorIs(t, err, tt.expected)
			updater.AssertNotCalled(t, "ReplaceListenerCertificate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_DuplicateMiscasedKeyUsesExactKey(t *testing.T) {
	api := &recordingListenerAPI{}
	h := handlers.NewCertUpdateHandlerWithDeps(
		&appConfig.Config{ListenerARN: "listener-abc"},
		elbv2service.NewServiceWithClient(api),
	)

	event := events.CloudWatchEvent{
		Detail: json.RawMessage(`{"requestParameters": {"certificateArn": "cert-a", "CERTIFICATEARN": "cert-b"}}`),
	}
	_, err := h.Handle(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, api.inputs, 1)
	assert.Equal(t, "cert-a", aws.ToString(api.inputs[0].Certificates[0].CertificateArn))
}

func TestHandle_MissingListenerARN(t *testing.T) {
	api := &recordingListenerAPI{}
	h := handlers.NewCertUpdateHandlerWithDeps(&appConfig.Config{}, elbv2service.NewServiceWithClient(api))

	resp, err := h.Handle(context.Background(), certificateEvent("cert-123"))

	assert.ErrorIs(t, err, models.ErrMissingListenerARN)
	assert.Equal(t, models.UpdateResponse{}, resp)
	assert.Empty(t, api.inputs)
}

func TestHandle_APIFailure(t *testing.T) {
	api := &recordingListenerAPI{
		err: &smithy.GenericAPIError{Code: "CertificateNotFound", Message: "Certificate 'cert-123' not found"},
	}
	h := handlers.NewCertUpdateHandlerWithDeps(
		&appConfig.Config{ListenerARN: "listener-abc"},
		elbv2service.NewServiceWithClient(api),
	)

	resp, err := h.Handle(context.Background(), certificateEvent("cert-123"))

	require.Error(t, err)
	assert.Equal(t, "CertificateNotFound", elbv2service.APIErrorCode(err))
	assert.NotEqual(t, models.NewUpdateSuccessResponse(), resp)
	assert.Len(t, api.inputs, 1)
}

func TestHandle_UpdaterErrorPropagates(t *testing.T) {
	updateErr := errors.New("throttled")
	updater := new(mockUpdater)
	updater.On("ReplaceListenerCertificate", mock.Anything, "listener-abc", "cert-123").Return(updateErr)

	h := handlers.NewCertUpdateHandlerWithDeps(&appConfig.Config{ListenerARN: "listener-abc"}, updater)
	_, err := h.Handle(context.Background(), certificateEvent("cert-123"))

	assert.ErrorIs(t, err, updateErr)
	updater.AssertNumberOfCalls(t, "ReplaceListenerCertificate", 1)
}

func TestHandle_SampleEventFile(t *testing.T) {
	raw, err := os.ReadFile("../../testdata/certificate_event.json")
	require.NoError(t, err)

	var event events.CloudWatchEvent
	require.NoError(t, json.Unmarshal(raw, &event))

	api := &recordingListenerAPI{}
	h := handlers.NewCertUpdateHandlerWithDeps(
		&appConfig.Config{ListenerARN: "listener-abc"},
		elbv2service.NewServiceWithClient(api),
	)

	_, err = h.Handle(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, api.inputs, 1)
	assert.Equal(t,
		"arn:aws:acm:us-east-1:123456789012:certificate/12345678-1234-1234-1234-123456789012",
		aws.ToString(api.inputs[0].Certificates[0].CertificateArn))
}
