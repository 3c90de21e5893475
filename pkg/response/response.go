// Package response writes the API's JSON bodies. Success payloads are
// written as-is; error payloads always carry the pair {error, message}
// where error is the category ("Conflict", "Unauthorized", ...) and
// message is human-readable detail.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 with the given payload.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 with the given payload.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends a JSON error response with an explicit category.
func Error(w http.ResponseWriter, status int, category, message string) {
	JSON(w, status, errorBody{Error: category, Message: message})
}

// ValidationError sends a 400 with field-level detail.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, errorBody{
		Error:   "Validation error",
		Message: "Invalid request payload",
		Fields:  errs,
	})
}

// BadRequest sends a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "Validation error", message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "Unauthorized", message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "Forbidden", message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "Not found", message)
}

// Conflict sends a 409.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "Conflict", message)
}

// Internal sends a 500 with a generic message; detail goes to the logs only.
func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
}
