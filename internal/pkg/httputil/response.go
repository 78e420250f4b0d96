// Package httputil provides the JSON envelope, access guard and shared
// middleware used by every HTTP handler.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Envelope is the body of every JSON response. Clients branch on Success.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Total   *int        `json:"total,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes a raw JSON response without envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Success writes {"success": true, "data": ...}.
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// List writes {"success": true, "data": [...], "total": n}.
func List(w http.ResponseWriter, data interface{}, total int) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Total: &total})
}

// Message writes {"success": true, "message": ...}.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: true, Message: message})
}

// Token writes {"success": true, "token": ...}.
func Token(w http.ResponseWriter, token string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Token: token})
}

// Error writes {"success": false, "error": ...}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Error: message})
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError writes a 400 describing the first failing field.
// Missing fields are reported as "Missing required field: <name>".
func ValidationError(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, ValidationMessage(err))
}

// ValidationMessage renders a validator error as a single client-facing sentence.
func ValidationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "validation error"
	}

	first := validationErrors[0]
	switch first.Tag() {
	case "required":
		return "Missing required field: " + first.Field()
	default:
		return "Invalid value for field: " + first.Field()
	}
}
