package response

import (
	"encoding/json"
	"io"
	"net/http"
)

// Error categories. Code 0 means success; every failure is a negative
// category that clients can branch on without parsing the HTTP status.
const (
	CodeOK           = 0
	CodeBadRequest   = -1
	CodeUnauthorized = -2
	CodeNotFound     = -3
	CodeConflict     = -4
	CodeInternal     = -5
)

// Response is the uniform API envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// DecodeJSON decodes JSON from request body into the provided struct
func DecodeJSON(body io.ReadCloser, v interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// JSON sends an envelope with the given HTTP status
func JSON(w http.ResponseWriter, status, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// OK sends a 200 response with code 0
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, CodeOK, "success", data)
}

// Created sends a 201 response with code 0
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, CodeOK, "success", data)
}

// BadRequest sends a 400 response
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, CodeBadRequest, message, nil)
}

// ValidationError sends a 400 response carrying per-field errors
func ValidationError(w http.ResponseWriter, details map[string]string) {
	JSON(w, http.StatusBadRequest, CodeBadRequest, "validation failed", details)
}

// Unauthorized sends a 401 response
func Unauthorized(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// Forbidden sends a 403 response
func Forbidden(w http.ResponseWriter, message string) {
	JSON(w, http.StatusForbidden, CodeUnauthorized, message, nil)
}

// NotFound sends a 404 response
func NotFound(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, CodeNotFound, message, nil)
}

// Conflict sends a 409 response
func Conflict(w http.ResponseWriter, message string) {
	JSON(w, http.StatusConflict, CodeConflict, message, nil)
}

// InternalError sends a 500 response with a generic message.
// Detail belongs in the log, never in the body.
func InternalError(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
}
