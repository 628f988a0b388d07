package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuan-noorazman/user-registry/internal/uuidutil"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/user"
)

// ErrorResponse represents an error response. Fields carries per-field
// validation messages.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// SuccessResponse represents a success response with a message.
type SuccessResponse struct {
	Message string `json:"message"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondSuccess writes a success response with the given message.
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, SuccessResponse{Message: message})
}

// respondServiceError maps errors from the directory service to responses.
func respondServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error, action string) {
	if fe, ok := user.AsFieldErrors(err); ok {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Fields: fe,
		})
		return
	}
	if errors.Is(err, user.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	log.Error(r.Context(), "failed to "+action, logger.Fields{
		"error": err.Error(),
	})
	respondError(w, http.StatusInternalServerError, "failed to "+action)
}

// parseJSON parses JSON from the request body into the given destination.
func parseJSON(r *http.Request, dest interface{}, log logger.Logger) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		log.Warn(r.Context(), "failed to parse JSON", logger.Fields{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// parseUIDOrRespond reads a record uid from the path parameters and responds
// with 400 if it is not a UUID.
func parseUIDOrRespond(w http.ResponseWriter, r *http.Request, paramName string) (string, bool) {
	uid, err := uuidutil.Normalize(mux.Vars(r)[paramName])
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: must be a valid UUID", paramName))
		return "", false
	}
	return uid, true
}
