package response

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List writes a collection together with its size.
func List(w http.ResponseWriter, message string, data interface{}, count int) {
	JSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Count:   &count,
		Data:    data,
	})
}

func Error(w http.ResponseWriter, statusCode int, message string, details interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Error:   message,
		Details: details,
	})
}

func ValidationError(w http.ResponseWriter, details interface{}) {
	Error(w, http.StatusBadRequest, "Validation failed", details)
}

func BadRequest(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Bad request"
	}
	Error(w, http.StatusBadRequest, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message, nil)
}

func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func PayloadTooLarge(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Request body too large"
	}
	Error(w, http.StatusRequestEntityTooLarge, message, nil)
}

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too many requests", nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message, nil)
}

func ServiceUnavailable(w http.ResponseWriter, message string, details interface{}) {
	Error(w, http.StatusServiceUnavailable, message, details)
}
