package utils

import (
	"encoding/json"
	"net/http"

	"retail-admin/models"
)

// ErrorHandler handles all error responses
type ErrorHandler struct{}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Status    int           `json:"status"`
	Message   string        `json:"message"`
	TypeError string        `json:"typeError,omitempty"`
	Errors    []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

func (h *ErrorHandler) write(w http.ResponseWriter, resp ErrorResponse) {
	body, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write(body)
}

// HandleError sends a generic error response
func (h *ErrorHandler) HandleError(w http.ResponseWriter, code int, message string) {
	h.write(w, ErrorResponse{Status: code, Message: message})
}

// HandleTyped sends an error response tagged with a typeError code
func (h *ErrorHandler) HandleTyped(w http.ResponseWriter, code int, typeError, message string) {
	h.write(w, ErrorResponse{Status: code, Message: message, TypeError: typeError})
}

// HandleValidationError sends a validation error response
func (h *ErrorHandler) HandleValidationError(w http.ResponseWriter, errors []ErrorDetail) {
	h.write(w, ErrorResponse{
		Status:    http.StatusBadRequest,
		Message:   "Validation failed",
		TypeError: models.TypeInvalid,
		Errors:    errors,
	})
}

// HandleBadRequest sends a 400 Bad Request response
func (h *ErrorHandler) HandleBadRequest(w http.ResponseWriter, message string) {
	h.HandleTyped(w, http.StatusBadRequest, models.TypeInvalid, message)
}

// HandleUnauthorized sends a 401 Unauthorized response
func (h *ErrorHandler) HandleUnauthorized(w http.ResponseWriter, message string) {
	h.HandleTyped(w, http.StatusUnauthorized, models.TypeUnauthorized, message)
}

// HandleForbidden sends a 403 Forbidden response
func (h *ErrorHandler) HandleForbidden(w http.ResponseWriter, message string) {
	h.HandleTyped(w, http.StatusForbidden, models.TypeForbidden, message)
}

// HandleNotFound sends a 404 Not Found response
func (h *ErrorHandler) HandleNotFound(w http.ResponseWriter, message string) {
	h.HandleTyped(w, http.StatusNotFound, models.TypeNotFound, message)
}

// HandleConflict sends a 409 response for a record that already exists
func (h *ErrorHandler) HandleConflict(w http.ResponseWriter, message string) {
	h.HandleTyped(w, http.StatusConflict, models.TypeAlreadyExist, message)
}

// HandleInternalError sends a 500 Internal Server Error response
func (h *ErrorHandler) HandleInternalError(w http.ResponseWriter, message string) {
	h.HandleTyped(w, http.StatusInternalServerError, models.TypeInternalServer, message)
}
