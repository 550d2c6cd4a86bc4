// Package middleware provides the HTTP middleware of the complexity API.
package middleware

import (
	"encoding/json"
	"net/http"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one is outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// errorBody matches the envelope of the API handlers.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Error writes a JSON error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Status: "ERROR", Message: message})
}
