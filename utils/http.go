package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error body shape shared by every endpoint:
// a human-readable message plus optional structured details.
type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with the given body
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a 400 Bad Request response with error details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Message: message,
		Details: details,
	})
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Authentication required."
	}
	return WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: message})
}

// WriteForbidden writes a 403 Forbidden response
func WriteForbidden(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Access denied."
	}
	return WriteJSON(w, http.StatusForbidden, ErrorResponse{Message: message})
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found."
	}
	return WriteJSON(w, http.StatusNotFound, ErrorResponse{Message: message})
}

// WriteTooManyRequests writes a 429 Too Many Requests response
func WriteTooManyRequests(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Too many requests."
	}
	return WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{Message: message})
}

// WriteInternalServerError writes a 500 Internal Server Error response.
// Callers pass a generic message; internals are never leaked here.
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Server error."
	}
	return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: message})
}
