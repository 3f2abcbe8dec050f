package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CertificateEventDetail is the detail section of a certificate-issuance
// notification delivered through EventBridge.
type CertificateEventDetail struct {
	EventSource       string             `json:"eventSource,omitempty"`
	EventName         string             `json:"eventName,omitempty"`
	AWSRegion         string             `json:"awsRegion,omitempty"`
	RequestParameters *RequestParameters `json:"requestParameters"`
}

// RequestParameters holds the parameters of the API call that produced the event.
type RequestParameters struct {
	CertificateArn string `json:"certificateArn"`
}

// ParseCertificateEventDetail decodes the raw detail of an event. Every level of
// detail.requestParameters.certificateArn must be present under exactly that key;
// encoding/json's case-insensitive field matching is not used for the path.
func ParseCertificateEventDetail(raw json.RawMessage) (*CertificateEventDetail, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return nil, ErrMissingDetail
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: detail: %v", ErrMalformedEvent, err)
	}

	rawParams, ok := fields["requestParameters"]
	if !ok || isNull(rawParams) {
		return nil, ErrMissingRequestParameters
	}

	var params map[string]json.RawMessage
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, fmt.Errorf("%w: requestParameters: %v", ErrMalformedEvent, err)
	}

	rawARN, ok := params["certificateArn"]
	if !ok || isNull(rawARN) {
		return nil, ErrMissingCertificateARN
	}

	var certificateARN string
	if err := json.Unmarshal(rawARN, &certificateARN); err != nil {
		return nil, fmt.Errorf("%w: certificateArn: %v", ErrMalformedEvent, err)
	}
	if certificateARN == "" {
		return nil, ErrMissingCertificateARN
	}

	return &CertificateEventDetail{
		EventSource:       optionalString(fields, "eventSource"),
		EventName:         optionalString(fields, "eventName"),
		AWSRegion:         optionalString(fields, "awsRegion"),
		RequestParameters: &RequestParameters{CertificateArn: certificateARN},
	}, nil
}

// CertificateARN returns the ARN of the newly issued certificate.
func (d *CertificateEventDetail) CertificateARN() string {
	if d == nil || d.RequestParameters == nil {
		return ""
	}
	return d.RequestParameters.CertificateArn
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// optionalString returns fields[key] when it is a JSON string, "" otherwise.
func optionalString(fields map[string]json.RawMessage, key string) string {
	var value string
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &value)
	}
	return value
}
