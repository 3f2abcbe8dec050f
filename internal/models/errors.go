// Package models defines the data structures for the listener certificate updater.
package models

import "errors"

// Common errors
var (
	ErrMissingDetail            = errors.New("event is missing detail")
	ErrMissingRequestParameters = errors.New("event detail is missing requestParameters")
	ErrMissingCertificateARN    = errors.New("event detail is missing requestParameters.certificateArn")
	ErrMalformedEvent           = errors.New("malformed certificate event")
	ErrMissingListenerARN       = errors.New("LISTENER_ARN environment variable is not set")
)

// IsEventError reports whether err was caused by the incoming event rather than
// by configuration or the load-balancer API.
func IsEventError(err error) bool {
	return errors.Is(err, ErrMissingDetail) ||
		errors.Is(err, ErrMissingRequestParameters) ||
		errors.Is(err, ErrMissingCertificateARN) ||
		errors.Is(err, ErrMalformedEvent)
}
