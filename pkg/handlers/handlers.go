// Package handlers provides HTTP response utilities for JSON APIs.
// These stateless functions standardize response formatting across handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// InternalErrorMessage is returned to clients in place of server-side error details.
const InternalErrorMessage = "internal server error"

// RespondJSON writes a JSON response with the given status code and data.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes a {"error": "..."} response.
// Errors with a 5xx status are logged in full but reported with a generic
// message so storage paths and driver errors never reach the client.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "error", err, "status", status)
		msg = InternalErrorMessage
	} else {
		logger.Warn("request rejected", "error", err, "status", status)
	}

	RespondJSON(w, status, map[string]string{"error": msg})
}

// RespondSuccess writes {"success": true} with status 200.
func RespondSuccess(w http.ResponseWriter) {
	RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
