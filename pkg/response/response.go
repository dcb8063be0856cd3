// Package response writes the JSON envelope every API route answers with.
//
// Successes that the client should confirm to the user carry a notice and
// dismiss_after_ms. Errors carry action "reload" so the client offers to
// reload the page.
package response

import (
	"encoding/json"
	"net/http"
)

// NoticeTTL is how long a success notice stays on screen, in milliseconds.
const NoticeTTL = 3000

// ActionReload asks the client to offer a reload.
const ActionReload = "reload"

type envelope struct {
	Status         int         `json:"status"`
	Message        string      `json:"message,omitempty"`
	Notice         string      `json:"notice,omitempty"`
	DismissAfterMS int         `json:"dismiss_after_ms,omitempty"`
	Action         string      `json:"action,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Errors         interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// Notice sends status with data and a transient confirmation message.
func Notice(w http.ResponseWriter, status int, notice string, data interface{}) {
	write(w, status, envelope{Status: status, Notice: notice, DismissAfterMS: NoticeTTL, Data: data})
}

// Error sends a JSON error with the reload action.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message, Action: ActionReload})
}

// ValidationError sends a 422 with a field → message map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Action:  ActionReload,
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	write(w, http.StatusUnauthorized, envelope{Status: http.StatusUnauthorized, Message: "Please sign in first", Action: ActionReload})
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
