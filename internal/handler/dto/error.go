// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeEmailTaken       = "EMAIL_TAKEN"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
