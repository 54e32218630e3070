// Package entity defines the API response envelopes and the typed errors
// shared between the web layer and the services.
package entity

import "net/http"

// ErrorDetail carries the message and request path of a failed call.
type ErrorDetail struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// ErrorResponse is the uniform error envelope:
// {"error":{"message":...,"path":...},"response":"Error","statusCode":...}
type ErrorResponse struct {
	Error      ErrorDetail `json:"error"`
	Response   string      `json:"response"`
	StatusCode int         `json:"statusCode"`
}

// DataResponse is the uniform success envelope.
type DataResponse struct {
	Response   string `json:"response"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
}

func NewErrorResponse(statusCode int, message, path string) ErrorResponse {
	return ErrorResponse{
		Error:      ErrorDetail{Message: message, Path: path},
		Response:   "Error",
		StatusCode: statusCode,
	}
}

func NewDataResponse(statusCode int, data any) DataResponse {
	return DataResponse{
		Response:   "Success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// ApiError is a service-level failure with an HTTP status attached. The
// controllers map it onto the error envelope unchanged.
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NotFound(message string) *ApiError {
	return &ApiError{StatusCode: http.StatusNotFound, Message: message}
}

func Conflict(message string) *ApiError {
	return &ApiError{StatusCode: http.StatusConflict, Message: message}
}

func Unauthorized(message string) *ApiError {
	return &ApiError{StatusCode: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *ApiError {
	return &ApiError{StatusCode: http.StatusForbidden, Message: message}
}
