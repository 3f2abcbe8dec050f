package models

import "net/http"

// UpdateSuccessMessage is the body returned after the listener accepted the new certificate.
const UpdateSuccessMessage = "SSL certificate updated successfully."

// UpdateResponse is the value returned from a certificate update invocation.
type UpdateResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// NewUpdateSuccessResponse returns the fixed success response.
func NewUpdateSuccessResponse() UpdateResponse {
	return UpdateResponse{
		StatusCode: http.StatusOK,
		Body:       UpdateSuccessMessage,
	}
}
